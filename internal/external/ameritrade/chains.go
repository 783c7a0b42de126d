package ameritrade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// ChainResponse is the raw option-chain payload. The expiration maps
// are keyed by "YYYY-MM-DD:DTE" strings, then by strike-price strings;
// contract records stay raw so one bad record can be skipped without
// discarding the rest of the chain.
type ChainResponse struct {
	Symbol          string                                  `json:"symbol"`
	Status          string                                  `json:"status"`
	UnderlyingPrice float64                                 `json:"underlyingPrice"`
	PutExpDateMap   map[string]map[string][]json.RawMessage `json:"putExpDateMap"`
	CallExpDateMap  map[string]map[string][]json.RawMessage `json:"callExpDateMap"`
}

// ExpDateMap returns the map matching the requested contract type.
func (r *ChainResponse) ExpDateMap(contractType string) map[string]map[string][]json.RawMessage {
	if contractType == "CALL" {
		return r.CallExpDateMap
	}
	return r.PutExpDateMap
}

// ChainContract is a single option contract record within a chain.
type ChainContract struct {
	PutCall          string  `json:"putCall"`
	Description      string  `json:"description"`
	Bid              float64 `json:"bid"`
	Ask              float64 `json:"ask"`
	BidSize          int     `json:"bidSize"`
	AskSize          int     `json:"askSize"`
	Delta            float64 `json:"delta"`
	Volatility       float64 `json:"volatility"`
	StrikePrice      float64 `json:"strikePrice"`
	DaysToExpiration int     `json:"daysToExpiration"`
}

// FetchChain fetches the option chain for one symbol over a date
// window. contractType is "PUT" or "CALL". A 200 response missing the
// matching expiration map is reported as *MalformedPayloadError.
func (c *Client) FetchChain(ctx context.Context, symbol, contractType string, from, to time.Time) (*ChainResponse, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("symbol", symbol)
	params.Set("contractType", contractType)
	params.Set("fromDate", from.Format("2006-01-02"))
	params.Set("toDate", to.Format("2006-01-02"))

	endpoint := fmt.Sprintf("%s/v1/marketdata/chains?%s", c.baseURL, params.Encode())

	body, err := c.httpClient.GetJSON(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch chain for %s: %w", symbol, err)
	}

	var chain ChainResponse
	if err := json.Unmarshal(body, &chain); err != nil {
		return nil, &MalformedPayloadError{Endpoint: "chains", Reason: err.Error()}
	}

	if chain.ExpDateMap(contractType) == nil {
		return nil, &MalformedPayloadError{
			Endpoint: "chains",
			Reason:   fmt.Sprintf("no %s expiration map for %s", contractType, symbol),
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":      symbol,
		"expirations": len(chain.ExpDateMap(contractType)),
	}).Debug("Fetched option chain")

	return &chain, nil
}
