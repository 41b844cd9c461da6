// Package geoip resolves client addresses to country names through a
// remote JSON geo API. Lookups are best effort: any failure degrades to
// the "None" category at the call site, never an error on the redirect
// path.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
)

// NoCountry is the category used when no country can be determined.
const NoCountry = "None"

// Resolver maps a client IP address to a country name.
type Resolver interface {
	Country(ctx context.Context, ip string) (string, error)
}

// HTTPResolver queries an ip-api.com style endpoint:
// GET {endpoint}/{ip}?fields=status,country returning
// {"status":"success","country":"France"}.
type HTTPResolver struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPResolver returns a resolver with a bounded per-request timeout.
// The resolver is process-scoped: create it once at startup and Close it
// on shutdown.
func NewHTTPResolver(endpoint string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Close releases idle connections held by the underlying client.
func (r *HTTPResolver) Close() {
	r.httpClient.CloseIdleConnections()
}

type geoResponse struct {
	Status  string `json:"status"`
	Country string `json:"country"`
}

// Country resolves ip to a country name. Loopback, private and
// unspecified addresses return NoCountry without touching the network,
// since the geo API cannot place them anyway.
func (r *HTTPResolver) Country(ctx context.Context, ip string) (string, error) {
	if !isPublicAddress(ip) {
		return NoCountry, nil
	}

	url := fmt.Sprintf("%s/%s?fields=status,country", r.endpoint, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NoCountry, fmt.Errorf("failed to build geo request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return NoCountry, fmt.Errorf("geo lookup for %s failed: %w", ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NoCountry, fmt.Errorf("geo lookup for %s returned status %d", ip, resp.StatusCode)
	}

	var geo geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return NoCountry, fmt.Errorf("failed to decode geo response: %w", err)
	}
	if geo.Status != "success" || geo.Country == "" {
		return NoCountry, nil
	}
	return geo.Country, nil
}

// isPublicAddress reports whether ip parses as a routable public address.
func isPublicAddress(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return false
	}
	return true
}
