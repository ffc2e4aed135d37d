package tfl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stationly/stationly/pkg/model"
)

const apiBaseURL = "https://api.tfl.gov.uk"

// Client is a rate-limited typed client for the TfL Unified API. All calls
// block on the shared RateLimiter before going out.
type Client struct {
	AppKey string

	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClient(appKey string) *Client {
	return &Client{
		AppKey: appKey,

		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: NewRateLimiter(DefaultRequestInterval),
	}
}

func (c *Client) get(ctx context.Context, path string, target any) error {
	if err := c.limiter.Acquire(ctx); err != nil {
		return err
	}

	requestURL := fmt.Sprintf("%s%s", apiBaseURL, path)
	if c.AppKey != "" {
		separator := "?"
		if u, err := url.Parse(requestURL); err == nil && u.RawQuery != "" {
			separator = "&"
		}
		requestURL = fmt.Sprintf("%s%sapp_key=%s", requestURL, separator, url.QueryEscape(c.AppKey))
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		// TfL sits behind Cloudflare and rejects requests without a user agent
		req.Header["user-agent"] = []string{"curl/7.54.1"}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("tfl api returned status %d for %s", resp.StatusCode, path)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("tfl api returned status %d for %s", resp.StatusCode, path))
		}

		jsonBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		return backoff.Permanent(json.Unmarshal(jsonBytes, target))
	}

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx))
}

// Arrivals returns every current arrival prediction for a transport mode.
func (c *Client) Arrivals(ctx context.Context, mode string) ([]model.ArrivalPrediction, error) {
	var arrivals []model.ArrivalPrediction
	err := c.get(ctx, fmt.Sprintf("/Mode/%s/Arrivals", url.PathEscape(mode)), &arrivals)

	return arrivals, err
}

// ArrivalsForStation returns the arrival predictions for a single stop point.
func (c *Client) ArrivalsForStation(ctx context.Context, naptanID string) ([]model.ArrivalPrediction, error) {
	var arrivals []model.ArrivalPrediction
	err := c.get(ctx, fmt.Sprintf("/StopPoint/%s/Arrivals", url.PathEscape(naptanID)), &arrivals)

	return arrivals, err
}

func (c *Client) Modes(ctx context.Context) ([]Mode, error) {
	var modes []Mode
	err := c.get(ctx, "/Line/Meta/Modes", &modes)

	return modes, err
}

func (c *Client) Lines(ctx context.Context, mode string) ([]Line, error) {
	var lines []Line
	err := c.get(ctx, fmt.Sprintf("/Line/Mode/%s", url.PathEscape(mode)), &lines)

	return lines, err
}

func (c *Client) StopPoints(ctx context.Context, lineID string) ([]StopPoint, error) {
	var stopPoints []StopPoint
	err := c.get(ctx, fmt.Sprintf("/Line/%s/StopPoints", url.PathEscape(lineID)), &stopPoints)

	return stopPoints, err
}

func (c *Client) RouteSequence(ctx context.Context, lineID string, direction string) (*RouteSequenceResponse, error) {
	var sequence RouteSequenceResponse
	err := c.get(ctx, fmt.Sprintf("/Line/%s/Route/Sequence/%s", url.PathEscape(lineID), url.PathEscape(direction)), &sequence)
	if err != nil {
		return nil, err
	}

	return &sequence, nil
}

// LineRoute returns a line with its route sections (destinations per direction).
func (c *Client) LineRoute(ctx context.Context, lineID string) (*Line, error) {
	var line Line
	err := c.get(ctx, fmt.Sprintf("/Line/%s/Route", url.PathEscape(lineID)), &line)
	if err != nil {
		return nil, err
	}

	return &line, nil
}

// LineStatuses returns every line for a mode along with its current statuses.
func (c *Client) LineStatuses(ctx context.Context, mode string) ([]Line, error) {
	var lines []Line
	err := c.get(ctx, fmt.Sprintf("/Line/Mode/%s/Status", url.PathEscape(mode)), &lines)

	return lines, err
}
