// Package workers runs the asynchronous click pipeline: a pool of
// goroutines drains the click event channel, derives the categorical
// metadata (browser, OS, country, referrer) and persists the result.
// Everything here is best effort; nothing on this path can fail or delay
// a redirect, which has already been answered by the time an event is
// processed.
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/acolella/linkshort/internal/geoip"
	"github.com/acolella/linkshort/internal/metadata"
	"github.com/acolella/linkshort/internal/models"
	"github.com/acolella/linkshort/internal/repository"
)

// StartClickWorkers launches workerCount goroutines draining
// clickEventsChan. The returned WaitGroup completes once the channel is
// closed and every worker has finished, which is the graceful-shutdown
// hook for the server.
func StartClickWorkers(workerCount int, clickEventsChan <-chan models.ClickEvent, clickRepo repository.ClickRepository, resolver geoip.Resolver, geoTimeout time.Duration) *sync.WaitGroup {
	log.Info().Int("workers", workerCount).Msg("Starting click workers")

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			clickWorker(clickEventsChan, clickRepo, resolver, geoTimeout)
		}()
	}
	return &wg
}

// clickWorker processes events until the channel is closed.
func clickWorker(clickEventsChan <-chan models.ClickEvent, clickRepo repository.ClickRepository, resolver geoip.Resolver, geoTimeout time.Duration) {
	for event := range clickEventsChan {
		click := buildClick(event, resolver, geoTimeout)

		if err := clickRepo.CreateClick(click); err != nil {
			// Log and move on, clicks are droppable by contract.
			log.Error().Err(err).Str("slug", event.Slug).Msg("Failed to save click")
			continue
		}
		log.Debug().Str("slug", event.Slug).Str("browser", click.Browser).
			Str("country", click.Country).Msg("Click recorded")
	}
}

// buildClick derives the categorical fields for one raw event. Every
// derivation failure degrades to a placeholder category instead of
// erroring out.
func buildClick(event models.ClickEvent, resolver geoip.Resolver, geoTimeout time.Duration) *models.Click {
	derived := metadata.Derive(event.UserAgent, event.Referrer)
	if len(derived.Degraded) > 0 {
		log.Debug().Strs("reasons", derived.Degraded).Str("slug", event.Slug).
			Msg("Click metadata partially degraded")
	}

	country := geoip.NoCountry
	if resolver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), geoTimeout)
		resolved, err := resolver.Country(ctx, event.IPAddress)
		cancel()
		if err != nil {
			log.Debug().Err(err).Str("ip", event.IPAddress).Msg("Geo lookup degraded")
		} else {
			country = resolved
		}
	}

	return &models.Click{
		Slug:      event.Slug,
		Browser:   derived.Browser,
		OS:        derived.OS,
		Country:   country,
		Referrer:  derived.Referrer,
		CreatedAt: event.Timestamp,
	}
}
