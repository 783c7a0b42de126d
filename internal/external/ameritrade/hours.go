package ameritrade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// HoursResponse is the option-market trading-hours payload: one entry
// per listed product under the top-level "option" key.
type HoursResponse struct {
	Option map[string]ProductHours `json:"option"`
}

// ProductHours describes one product's trading session.
type ProductHours struct {
	IsOpen       bool                         `json:"isOpen"`
	SessionHours map[string][]SessionInterval `json:"sessionHours"`
}

// SessionInterval is a single open interval, RFC3339 timestamps.
type SessionInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FetchHours fetches the option-market session schedule.
func (c *Client) FetchHours(ctx context.Context) (*HoursResponse, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)

	endpoint := fmt.Sprintf("%s/v1/marketdata/OPTION/hours?%s", c.baseURL, params.Encode())

	body, err := c.httpClient.GetJSON(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch market hours: %w", err)
	}

	var hours HoursResponse
	if err := json.Unmarshal(body, &hours); err != nil {
		return nil, &MalformedPayloadError{Endpoint: "hours", Reason: err.Error()}
	}
	if hours.Option == nil {
		return nil, &MalformedPayloadError{Endpoint: "hours", Reason: "no option market data"}
	}

	return &hours, nil
}

// IsMarketOpen reports whether the option market is trading at now.
// A product counts as open when the provider flags it open or when now
// falls inside any of its session intervals. Errors are surfaced to the
// caller so the display layer can show an "unknown" state; they never
// abort a fetch cycle.
func (c *Client) IsMarketOpen(ctx context.Context, now time.Time) (bool, error) {
	hours, err := c.FetchHours(ctx)
	if err != nil {
		return false, err
	}
	return hours.OpenAt(now), nil
}

// OpenAt evaluates the schedule against a timestamp.
func (r *HoursResponse) OpenAt(now time.Time) bool {
	for _, product := range r.Option {
		if product.IsOpen {
			return true
		}
		for _, intervals := range product.SessionHours {
			for _, iv := range intervals {
				start, err1 := time.Parse(time.RFC3339, iv.Start)
				end, err2 := time.Parse(time.RFC3339, iv.End)
				if err1 != nil || err2 != nil {
					continue
				}
				if !now.Before(start) && now.Before(end) {
					return true
				}
			}
		}
	}
	return false
}
