package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/RudolfTheOne/ThetaTracker/pkg/httputil"
	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

// Client handles communication with the Finnhub earnings-calendar API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
}

// NewClient creates a new Finnhub client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, apiKey, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "finnhub"),
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

// earningsCalendarResponse is the calendar payload; only the presence
// of entries matters to the screener.
type earningsCalendarResponse struct {
	EarningsCalendar []earningsEvent `json:"earningsCalendar"`
}

type earningsEvent struct {
	Date   string `json:"date"`
	Symbol string `json:"symbol"`
}

// HasUpcomingEarnings reports whether the symbol has an earnings event
// scheduled inside [from, to]. An empty or missing calendar means no
// known event; that is a normal answer, not an error.
func (c *Client) HasUpcomingEarnings(ctx context.Context, symbol string, from, to time.Time) (bool, error) {
	params := url.Values{}
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))
	params.Set("symbol", symbol)
	params.Set("token", c.apiKey)

	endpoint := fmt.Sprintf("%s/api/v1/calendar/earnings?%s", c.baseURL, params.Encode())

	body, err := c.httpClient.GetJSON(ctx, endpoint)
	if err != nil {
		return false, fmt.Errorf("fetch earnings calendar for %s: %w", symbol, err)
	}

	if len(body) == 0 {
		return false, nil
	}

	var calendar earningsCalendarResponse
	if err := json.Unmarshal(body, &calendar); err != nil {
		// Treat an unreadable calendar like an empty one; earnings
		// flagging is advisory and must not block the candidates.
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Unreadable earnings calendar")
		return false, nil
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"events": len(calendar.EarningsCalendar),
	}).Debug("Fetched earnings calendar")

	return len(calendar.EarningsCalendar) > 0, nil
}
