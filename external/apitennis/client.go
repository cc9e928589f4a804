package apitennis

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/courtline/tennis-data-api/internal/platform/logging"
	"github.com/courtline/tennis-data-api/internal/platform/resilience"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

const (
	defaultBaseURL     = "https://api.api-tennis.com/tennis/"
	maxResponseBytes   = 16 << 20
	maxAbbreviatedBody = 300
)

// Provider method names, passed as the method query parameter.
const (
	MethodEvents      = "get_events"
	MethodTournaments = "get_tournaments"
	MethodFixtures    = "get_fixtures"
	MethodPlayers     = "get_players"
	MethodOdds        = "get_odds"
	MethodH2H         = "get_H2H"
)

var apiKeyParamRegex = regexp.MustCompile(`APIkey=[^&\s"']+`)
var errAPITennisTransient = crerr.New("api-tennis transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the API Tennis provider. Every operation goes
// through one call path: method + params on the query string, the API
// key injected last, sonic decode of the response envelope.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + "/"
	if baseURL == "/" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) GetEvents(ctx context.Context) (usecase.ProviderEnvelope, error) {
	return c.call(ctx, MethodEvents, nil)
}

func (c *Client) GetTournaments(ctx context.Context, eventTypeKey string) (usecase.ProviderEnvelope, error) {
	params := map[string]string{}
	if strings.TrimSpace(eventTypeKey) != "" {
		params["event_type_key"] = eventTypeKey
	}
	return c.call(ctx, MethodTournaments, params)
}

func (c *Client) GetFixtures(ctx context.Context, dateStart, dateStop string) (usecase.ProviderEnvelope, error) {
	return c.call(ctx, MethodFixtures, map[string]string{
		"date_start": dateStart,
		"date_stop":  dateStop,
	})
}

func (c *Client) GetFixturesByTournament(ctx context.Context, tournamentKey string) (usecase.ProviderEnvelope, error) {
	return c.call(ctx, MethodFixtures, map[string]string{
		"tournament_key": tournamentKey,
	})
}

func (c *Client) GetPlayer(ctx context.Context, playerKey string) (usecase.ProviderEnvelope, error) {
	return c.call(ctx, MethodPlayers, map[string]string{
		"player_key": playerKey,
	})
}

func (c *Client) GetOdds(ctx context.Context, dateStart, dateStop string) (usecase.ProviderEnvelope, error) {
	return c.call(ctx, MethodOdds, map[string]string{
		"date_start": dateStart,
		"date_stop":  dateStop,
	})
}

func (c *Client) GetOddsByMatch(ctx context.Context, matchKey string) (usecase.ProviderEnvelope, error) {
	return c.call(ctx, MethodOdds, map[string]string{
		"match_key": matchKey,
	})
}

func (c *Client) GetH2H(ctx context.Context, firstPlayerKey, secondPlayerKey string) (usecase.ProviderEnvelope, error) {
	return c.call(ctx, MethodH2H, map[string]string{
		"first_player_key":  firstPlayerKey,
		"second_player_key": secondPlayerKey,
	})
}

func (c *Client) call(ctx context.Context, method string, params map[string]string) (usecase.ProviderEnvelope, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "api-tennis circuit breaker rejected request", "method", method, "state", c.breaker.State())
			return usecase.ProviderEnvelope{}, fmt.Errorf("tennis data provider is temporarily unavailable: %w", err)
		}
	}

	values := url.Values{}
	values.Set("method", method)
	for key, value := range params {
		values.Set(key, value)
	}
	flightKey := values.Encode()
	values.Set("APIkey", c.apiKey)

	fullURL := c.baseURL + "?" + values.Encode()

	out, err, _ := c.flight.Do(flightKey, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errAPITennisTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return usecase.ProviderEnvelope{}, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return usecase.ProviderEnvelope{}, fmt.Errorf("unexpected response payload type %T", out)
	}

	var envelope usecase.ProviderEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return usecase.ProviderEnvelope{}, fmt.Errorf("decode provider payload: %w", err)
	}

	return envelope, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errAPITennisTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errAPITennisTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				statusErr := &usecase.ProviderStatusError{StatusCode: resp.StatusCode, Body: abbreviateBody(raw)}
				if !isRetryableStatus(resp.StatusCode) {
					return nil, statusErr
				}
				lastErr = fmt.Errorf("%w: %w", errAPITennisTransient, statusErr)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "api-tennis request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "APIkey=REDACTED")
}

func redactAPIURL(rawURL string) string {
	return apiKeyParamRegex.ReplaceAllString(rawURL, "APIkey=REDACTED")
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) > maxAbbreviatedBody {
		return body[:maxAbbreviatedBody] + "..."
	}
	return body
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
