package calculator

import "QuantLens/internal/model"

// DetectCrossovers lists the bars where the short MA crossed the long MA.
// Only bars with both averages defined carry a signal; the first such bar never
// emits an event, so consecutive events always alternate in direction.
func DetectCrossovers(frame *model.IndicatorFrame) []model.CrossoverEvent {
	var events []model.CrossoverEvent
	prevAbove, havePrev := false, false
	for i := range frame.Bars {
		if i >= len(frame.ShortMA) || i >= len(frame.LongMA) {
			break
		}
		short, long := frame.ShortMA[i], frame.LongMA[i]
		if !short.Valid || !long.Valid {
			continue
		}
		above := short.Float64 > long.Float64
		if havePrev && above != prevAbove {
			dir := model.CrossDeath
			if above {
				dir = model.CrossGolden
			}
			events = append(events, model.CrossoverEvent{
				Date:      frame.Bars[i].Date,
				Index:     i,
				Price:     frame.Bars[i].Close,
				Direction: dir,
			})
		}
		prevAbove, havePrev = above, true
	}
	return events
}
