// Package services contains the business logic for the link registry and
// the click analytics read path.
package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/acolella/linkshort/internal/cache"
	apperrors "github.com/acolella/linkshort/internal/errors"
	"github.com/acolella/linkshort/internal/models"
	"github.com/acolella/linkshort/internal/repository"
	"github.com/acolella/linkshort/internal/slug"
)

// schemePattern matches destinations that already carry a usable scheme.
// Anything else gets http:// prepended, matching what users paste.
var schemePattern = regexp.MustCompile(`^https?://`)

// LinkService owns the slug -> destination registry: allocation,
// lookup, resolution and the view counter.
type LinkService struct {
	linkRepo  repository.LinkRepository
	generator *slug.Generator
	destCache *cache.DestinationCache // may be nil; caching is optional
	minLen    int
	maxLen    int
}

// NewLinkService creates and returns a new LinkService. destCache may be
// nil to disable redirect-path caching (tests mostly do).
func NewLinkService(linkRepo repository.LinkRepository, generator *slug.Generator, destCache *cache.DestinationCache, minLen, maxLen int) *LinkService {
	return &LinkService{
		linkRepo:  linkRepo,
		generator: generator,
		destCache: destCache,
		minLen:    minLen,
		maxLen:    maxLen,
	}
}

// NormalizeDestination validates and normalizes a destination address.
// Destinations without an explicit http(s) scheme get http:// prepended.
func NormalizeDestination(destination string) (string, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return "", apperrors.ErrInvalidDestination
	}
	if !schemePattern.MatchString(destination) {
		destination = "http://" + destination
	}
	return destination, nil
}

// CreateLink allocates a new link. With an empty customSlug a fresh one
// is generated; otherwise the user-supplied slug is lower-cased and must
// pass the full validation chain: alphabet, length, availability,
// reserved names. The storage unique key stays the final word on
// availability either way.
func (s *LinkService) CreateLink(destination, customSlug string) (*models.Link, error) {
	dest, err := NormalizeDestination(destination)
	if err != nil {
		return nil, err
	}

	var theSlug string
	if customSlug == "" {
		theSlug, err = s.generator.GenerateUnique(s.linkRepo.LinkExists)
		if err != nil {
			return nil, err
		}
	} else {
		theSlug = strings.ToLower(customSlug)
		if err := slug.ValidateSyntax(theSlug, s.minLen, s.maxLen); err != nil {
			return nil, err
		}
		// Friendly pre-check; the insert below still enforces uniqueness.
		taken, err := s.linkRepo.LinkExists(theSlug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("slug %q: %w", theSlug, apperrors.ErrSlugAlreadyExists)
		}
		if slug.IsReserved(theSlug) {
			return nil, fmt.Errorf("slug %q: %w", theSlug, apperrors.ErrSlugReserved)
		}
	}

	link := &models.Link{
		Slug:        theSlug,
		Destination: dest,
	}
	if err := s.linkRepo.CreateLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

// GetLink retrieves a link by slug, case-insensitively.
func (s *LinkService) GetLink(theSlug string) (*models.Link, error) {
	return s.linkRepo.GetLinkBySlug(strings.ToLower(theSlug))
}

// Resolve looks up a slug for redirection. The view counter is bumped in
// one atomic UPDATE; zero affected rows doubles as the existence check.
// The destination itself is served from the in-process cache when warm,
// which is safe because destinations never change after creation.
func (s *LinkService) Resolve(theSlug string) (string, error) {
	theSlug = strings.ToLower(theSlug)

	affected, err := s.linkRepo.IncrementViews(theSlug, time.Now())
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return "", fmt.Errorf("slug %q: %w", theSlug, apperrors.ErrSlugNotFound)
	}

	if s.destCache != nil {
		if dest, ok := s.destCache.Get(theSlug); ok {
			return dest, nil
		}
	}

	link, err := s.linkRepo.GetLinkBySlug(theSlug)
	if err != nil {
		return "", err
	}
	if s.destCache != nil {
		s.destCache.Set(theSlug, link.Destination)
	}
	return link.Destination, nil
}

// CountLinks returns the total number of links in the registry.
func (s *LinkService) CountLinks() (int64, error) {
	return s.linkRepo.CountLinks()
}
