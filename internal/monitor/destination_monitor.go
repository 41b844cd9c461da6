// Package monitor periodically checks that registered destinations are
// still reachable and logs state transitions.
package monitor

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/acolella/linkshort/internal/repository"
)

// DestinationMonitor walks the registry on an interval and HEAD-checks
// every destination, remembering the last observed state per slug so it
// only shouts when something changes.
type DestinationMonitor struct {
	linkRepo    repository.LinkRepository
	interval    time.Duration
	knownStates map[string]bool // slug -> reachable
	mu          sync.Mutex
	httpClient  *http.Client
}

// NewDestinationMonitor creates a monitor checking every interval.
func NewDestinationMonitor(linkRepo repository.LinkRepository, interval time.Duration) *DestinationMonitor {
	return &DestinationMonitor{
		linkRepo:    linkRepo,
		interval:    interval,
		knownStates: make(map[string]bool),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Start runs the monitoring loop until ctx is cancelled. An immediate
// pass runs before the first tick.
func (m *DestinationMonitor) Start(ctx context.Context) {
	log.Info().Dur("interval", m.interval).Msg("Starting destination monitor")
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.checkDestinations(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Destination monitor stopped")
			return
		case <-ticker.C:
			m.checkDestinations(ctx)
		}
	}
}

// checkDestinations verifies every destination once and logs transitions.
func (m *DestinationMonitor) checkDestinations(ctx context.Context) {
	links, err := m.linkRepo.GetAllLinks()
	if err != nil {
		log.Error().Err(err).Msg("Monitor failed to load links")
		return
	}

	for _, link := range links {
		currentState := m.isReachable(ctx, link.Destination)

		m.mu.Lock()
		previousState, seen := m.knownStates[link.Slug]
		m.knownStates[link.Slug] = currentState
		m.mu.Unlock()

		if !seen {
			log.Debug().Str("slug", link.Slug).Bool("reachable", currentState).
				Msg("Initial destination state")
			continue
		}
		if currentState != previousState {
			log.Warn().Str("slug", link.Slug).Str("destination", link.Destination).
				Bool("reachable", currentState).Msg("Destination state changed")
		}
	}
}

// isReachable HEAD-requests the destination; 2xx and 3xx count as up.
func (m *DestinationMonitor) isReachable(ctx context.Context, url string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}
