package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rastrodeliberdade/rider-platform/internal/api"
	"github.com/rastrodeliberdade/rider-platform/internal/types"
)

var _ RiderClient = (*HTTPRiderClient)(nil)

// RiderClient resolves a rider's auth-relevant fields across the service
// boundary to the rider service.
type RiderClient interface {
	// FindByEmail returns (nil, nil) when the rider service reports no such
	// record: an unregistered email is a normal outcome, not an error. Any
	// other failure wraps api.ErrLookupFailure.
	FindByEmail(ctx context.Context, email string) (*types.RiderAuth, error)
}

// HTTPRiderClient queries the rider service's internal by-email endpoint.
// Each call is a fresh request: no retries, no caching.
type HTTPRiderClient struct {
	logger  *slog.Logger
	baseURL string
	client  *http.Client
}

func NewHTTPRiderClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPRiderClient {
	return &HTTPRiderClient{
		logger:  logger,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPRiderClient) FindByEmail(ctx context.Context, email string) (*types.RiderAuth, error) {
	lookupURL := fmt.Sprintf("%s/riders/internal/by-email?email=%s",
		c.baseURL, url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", api.ErrLookupFailure, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Rider lookup request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", api.ErrLookupFailure, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		c.logger.ErrorContext(ctx, "Rider lookup returned unexpected status",
			slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: unexpected status %d", api.ErrLookupFailure, resp.StatusCode)
	}

	var rider types.RiderAuth
	if err := json.NewDecoder(resp.Body).Decode(&rider); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", api.ErrLookupFailure, err)
	}
	return &rider, nil
}
