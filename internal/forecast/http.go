package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public exchange-rate API used when none is configured.
const DefaultBaseURL = "https://open.er-api.com"

// HTTPSource fetches the latest base→target rate and projects it flat over
// the requested horizon.
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	now     func() time.Time
}

// NewHTTPSource creates a source against baseURL (DefaultBaseURL when empty).
func NewHTTPSource(baseURL, apiKey string) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
	}
}

type latestResponse struct {
	Result    string             `json:"result"`
	BaseCode  string             `json:"base_code"`
	Rates     map[string]float64 `json:"rates"`
	ErrorType string             `json:"error-type,omitempty"`
}

func (s *HTTPSource) Forecast(ctx context.Context, req Request) (Series, error) {
	base := strings.ToUpper(req.Base)
	target := strings.ToUpper(req.Target)
	horizon := req.Horizon
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	endpoint := fmt.Sprintf("%s/v6/latest/%s", s.baseURL, url.PathEscape(base))
	if s.apiKey != "" {
		endpoint += "?apikey=" + url.QueryEscape(s.apiKey)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("exchange rate request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read exchange rate response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate API returned status %d: %s", httpResp.StatusCode, string(body))
	}

	var latest latestResponse
	if err := json.Unmarshal(body, &latest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal exchange rate response: %w", err)
	}
	if latest.Result == "error" {
		return nil, fmt.Errorf("exchange rate API error: %s", latest.ErrorType)
	}

	rate, ok := latest.Rates[target]
	if base == target {
		rate, ok = 1, true
	}
	if !ok || rate <= 0 {
		return nil, fmt.Errorf("no %s rate for base %s", target, base)
	}

	return Flat(rate, s.now(), horizon), nil
}
