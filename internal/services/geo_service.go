package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/koweyli/vantage-console/internal/logger"
)

// Location placeholders. Lookups never fail a caller; they degrade to one of
// these strings.
const (
	LocationSystem      = "system action"
	LocationLocal       = "local host"
	LocationUnknown     = "unknown location"
	LocationUnavailable = "location unavailable"
)

// GeoService resolves client addresses into a human-readable location string
// via an ip-api.com compatible endpoint. Every call is bounded by the client
// timeout and the caller's context.
type GeoService struct {
	base   string
	client *http.Client
}

// NewGeoService returns a service against the given API base URL (e.g.
// "http://ip-api.com") with a hard per-lookup timeout.
func NewGeoService(base string, timeout time.Duration) *GeoService {
	return &GeoService{
		base:   strings.TrimSuffix(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

type geoResponse struct {
	Status     string `json:"status"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
	ISP        string `json:"isp"`
}

// Lookup returns a display string for the address. System and loopback
// addresses short-circuit; network or API failures degrade to a placeholder.
func (s *GeoService) Lookup(ctx context.Context, ip string) string {
	if ip == "" || ip == "system" {
		return LocationSystem
	}
	if isLoopback(ip) {
		return LocationLocal
	}

	endpoint := fmt.Sprintf("%s/json/%s?fields=status,country,regionName,city,isp", s.base, url.PathEscape(ip))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return LocationUnavailable
	}
	resp, err := s.client.Do(req)
	if err != nil {
		logger.WithError(err).Debug("geolocation lookup failed")
		return LocationUnavailable
	}
	defer resp.Body.Close()

	var body geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logger.WithError(err).Debug("geolocation response decode failed")
		return LocationUnavailable
	}
	if body.Status != "success" {
		return LocationUnknown
	}
	return fmt.Sprintf("%s %s %s (%s)", body.Country, body.RegionName, body.City, body.ISP)
}

// FormatIP renders an address for display, mirroring what the console shows:
// mapped and loopback IPv6 forms collapse to their IPv4 rendering.
func FormatIP(ip string) string {
	switch {
	case ip == "":
		return "unknown"
	case ip == "::1" || ip == "::ffff:127.0.0.1":
		return "127.0.0.1 (local)"
	case strings.HasPrefix(ip, "::ffff:"):
		return strings.TrimPrefix(ip, "::ffff:") + " (IPv4)"
	case strings.Contains(ip, ".") && !strings.Contains(ip, ":"):
		return ip + " (IPv4)"
	case strings.Contains(ip, ":"):
		return ip + " (IPv6)"
	default:
		return ip
	}
}

func isLoopback(ip string) bool {
	return ip == "::1" || ip == "::ffff:127.0.0.1" || ip == "127.0.0.1"
}
