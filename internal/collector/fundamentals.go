package collector

import (
	"context"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"QuantLens/internal/model"
)

const quoteSummaryModules = "price,summaryDetail,defaultKeyStatistics,assetProfile"

// FetchInfo fetches company fundamentals from the quoteSummary endpoint and flattens
// the modules into one map. Formatted values ({"raw": 1.2, "fmt": "1.20"}) keep their raw number.
// Any failure yields an empty map.
func (f *YahooFetcher) FetchInfo(ctx context.Context, ticker string) model.Fundamentals {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		f.BaseURL, url.PathEscape(ticker), url.QueryEscape(quoteSummaryModules))
	body, err := f.get(ctx, u)
	if err != nil {
		return model.Fundamentals{}
	}
	return parseQuoteSummary(body)
}

func parseQuoteSummary(body []byte) model.Fundamentals {
	info := model.Fundamentals{}
	if !gjson.ValidBytes(body) {
		return info
	}
	gjson.GetBytes(body, "quoteSummary.result.0").ForEach(func(_, module gjson.Result) bool {
		module.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if _, seen := info[k]; seen {
				return true
			}
			switch {
			case value.IsObject():
				if raw := value.Get("raw"); raw.Exists() && raw.Type != gjson.Null {
					info[k] = raw.Value()
				}
			case value.IsArray(), value.Type == gjson.Null:
			default:
				info[k] = value.Value()
			}
			return true
		})
		return true
	})
	return info
}
