package model

import "errors"

var (
	// ErrInsufficientData is returned when a series is too short for the requested computation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidParameter is returned for non-positive windows, horizons or path counts,
	// and for a short window that is not below the long window.
	ErrInvalidParameter = errors.New("invalid parameter")
)
