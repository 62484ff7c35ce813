package services

import (
	"github.com/containrrr/shoutrrr"

	"github.com/koweyli/vantage-console/internal/logger"
)

// AlertService broadcasts security-relevant events (failed logins, account
// deletions) to the configured shoutrrr destinations. Delivery is best
// effort: failures are logged and never surfaced to the triggering request.
type AlertService struct {
	urls []string
}

// NewAlertService returns a service for the given shoutrrr URLs. An empty
// list yields a no-op service.
func NewAlertService(urls []string) *AlertService {
	return &AlertService{urls: urls}
}

// Notify sends the message to every destination in the background.
func (s *AlertService) Notify(message string) {
	if len(s.urls) == 0 {
		return
	}
	go func() {
		for _, url := range s.urls {
			if err := shoutrrr.Send(url, message); err != nil {
				logger.WithError(err).Warn("alert delivery failed")
			}
		}
	}()
}
