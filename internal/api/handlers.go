// Package api mounts the HTTP surface: link creation, lookup, counting,
// stats, QR rendering and the redirect route itself. Every route segment
// mounted here must appear in the reserved slug set.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	apperrors "github.com/acolella/linkshort/internal/errors"
	"github.com/acolella/linkshort/internal/models"
	"github.com/acolella/linkshort/internal/services"
)

// LinkView is the serialized representation of a link returned by the
// creation and lookup endpoints.
type LinkView struct {
	Slug         string    `json:"slug"`
	URL          string    `json:"url"`
	Link         string    `json:"link"`
	Views        uint64    `json:"views"`
	CreatedAt    time.Time `json:"created_at"`
	LastChangeAt time.Time `json:"last_change_at"`
}

// SetupRoutes configures all Gin routes and injects dependencies.
// clickEvents receives one raw event per successful redirect; the send
// is non-blocking so analytics can never delay a redirect.
func SetupRoutes(router *gin.Engine, linkService *services.LinkService, statsService *services.StatsService, clickEvents chan<- models.ClickEvent, baseURL string) {
	router.GET("/health", HealthCheckHandler)

	// The original wire surface accepts both GET and POST on the three
	// query-parameter endpoints.
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		router.Handle(method, "/add", AddLinkHandler(linkService))
		router.Handle(method, "/get", GetLinkHandler(linkService))
		router.Handle(method, "/all", CountLinksHandler(linkService))
	}

	router.GET("/stats", GetStatsHandler(statsService))
	router.GET("/qr/:slug", QRCodeHandler(linkService, baseURL))

	// Redirect route last, at root level; reserved slugs keep it from
	// shadowing the routes above.
	router.GET("/:slug", RedirectHandler(linkService, clickEvents))
}

// HealthCheckHandler handles the /health route to verify service status.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AddLinkHandler creates a new short link from the url query parameter,
// with an optional custom slug.
func AddLinkHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")
		customSlug := c.Query("slug")

		link, err := linkService.CreateLink(rawURL, customSlug)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, linkView(c, link))
	}
}

// GetLinkHandler returns the stored record for a slug without touching
// the view counter.
func GetLinkHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		theSlug := c.Query("slug")
		if theSlug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug query parameter is required"})
			return
		}

		link, err := linkService.GetLink(theSlug)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, linkView(c, link))
	}
}

// CountLinksHandler returns the total number of registered links.
func CountLinksHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := linkService.CountLinks()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// GetStatsHandler returns the four categorical click breakdowns for a slug.
func GetStatsHandler(statsService *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		theSlug := c.Query("slug")
		if theSlug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug query parameter is required"})
			return
		}

		stats, err := statsService.Aggregate(theSlug)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// RedirectHandler resolves a slug and redirects to its destination.
// Click recording is enqueued after the lookup and never awaited: a full
// buffer drops the event rather than delaying the user.
func RedirectHandler(linkService *services.LinkService, clickEvents chan<- models.ClickEvent) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lower-case once here so the enqueued event carries the same
		// slug the click rows are keyed by.
		theSlug := strings.ToLower(c.Param("slug"))

		destination, err := linkService.Resolve(theSlug)
		if err != nil {
			respondError(c, err)
			return
		}

		event := models.ClickEvent{
			Slug:      theSlug,
			Timestamp: time.Now(),
			UserAgent: c.GetHeader("User-Agent"),
			Referrer:  c.GetHeader("Referer"),
			IPAddress: c.ClientIP(),
		}

		select {
		case clickEvents <- event:
		default:
			log.Warn().Str("slug", theSlug).Msg("Click buffer full, dropping event")
		}

		c.Redirect(http.StatusFound, destination)
	}
}

// QRCodeHandler renders a PNG QR code pointing at the short link.
func QRCodeHandler(linkService *services.LinkService, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		theSlug := c.Param("slug")

		link, err := linkService.GetLink(theSlug)
		if err != nil {
			respondError(c, err)
			return
		}

		size := 256
		if sizeStr := c.Query("size"); sizeStr != "" {
			parsed, err := strconv.Atoi(sizeStr)
			if err != nil || parsed < 128 || parsed > 1024 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a number between 128 and 1024"})
				return
			}
			size = parsed
		}

		png, err := qrcode.Encode(baseURL+"/"+link.Slug, qrcode.Medium, size)
		if err != nil {
			log.Error().Err(err).Str("slug", link.Slug).Msg("QR encoding failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate QR code"})
			return
		}

		c.Data(http.StatusOK, "image/png", png)
	}
}

// linkView builds the serializable view of a link, using the request
// host to render the short link the same way the client reached us.
func linkView(c *gin.Context, link *models.Link) LinkView {
	return LinkView{
		Slug:         link.Slug,
		URL:          link.Destination,
		Link:         c.Request.Host + "/" + link.Slug,
		Views:        link.Views,
		CreatedAt:    link.CreatedAt,
		LastChangeAt: link.LastChangeAt,
	}
}

// respondError maps the closed error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsInvalidSlug(err), errors.Is(err, apperrors.ErrInvalidDestination):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrSlugAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrSlugNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "short link not found"})
	case errors.Is(err, apperrors.ErrExhaustedSlugSpace):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "unable to allocate a slug, try again later"})
	default:
		log.Error().Err(err).Msg("Unhandled error in HTTP handler")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
