package ameritrade

import (
	"fmt"

	"github.com/RudolfTheOne/ThetaTracker/pkg/httputil"
	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

// Client handles communication with the options-data provider. All
// chain and market-hours calls go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
}

// NewClient creates a new options-data provider client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, apiKey, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "ameritrade"),
		apiKey:     apiKey,
		baseURL:    baseURL,
	}
}

// MalformedPayloadError reports a 200 response whose body is missing
// the fields a caller needs to proceed.
type MalformedPayloadError struct {
	Endpoint string
	Reason   string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed %s payload: %s", e.Endpoint, e.Reason)
}
