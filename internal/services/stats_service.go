package services

import (
	"strings"

	"github.com/acolella/linkshort/internal/models"
	"github.com/acolella/linkshort/internal/repository"
)

// Stats holds the per-category click tallies for one slug. Maps are
// always non-nil; a link with no clicks yet yields four empty maps.
type Stats struct {
	Browsers         map[string]int `json:"browsers"`
	OperatingSystems map[string]int `json:"operating_systems"`
	Countries        map[string]int `json:"countries"`
	Referrers        map[string]int `json:"ref"`
}

// StatsService recomputes click summaries from the live click set on
// every call. It keeps no state of its own, so results are never stale.
type StatsService struct {
	linkRepo  repository.LinkRepository
	clickRepo repository.ClickRepository
}

// NewStatsService creates and returns a new StatsService.
func NewStatsService(linkRepo repository.LinkRepository, clickRepo repository.ClickRepository) *StatsService {
	return &StatsService{linkRepo: linkRepo, clickRepo: clickRepo}
}

// Aggregate groups all click events for a slug into the four categorical
// breakdowns. An unknown slug fails with ErrSlugNotFound; a known slug
// with zero events succeeds with empty maps.
func (s *StatsService) Aggregate(theSlug string) (*Stats, error) {
	theSlug = strings.ToLower(theSlug)

	// Existence gate first, so a slug with no clicks is distinguishable
	// from a slug that was never allocated.
	if _, err := s.linkRepo.GetLinkBySlug(theSlug); err != nil {
		return nil, err
	}

	stats := &Stats{}
	var err error
	if stats.Browsers, err = s.clickRepo.GroupCountBySlug(theSlug, "browser"); err != nil {
		return nil, err
	}
	if stats.OperatingSystems, err = s.clickRepo.GroupCountBySlug(theSlug, "os"); err != nil {
		return nil, err
	}
	if stats.Countries, err = s.clickRepo.GroupCountBySlug(theSlug, "country"); err != nil {
		return nil, err
	}
	if stats.Referrers, err = s.clickRepo.GroupCountBySlug(theSlug, "referrer"); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetLinkStats returns a link together with its total recorded clicks,
// used by the stats CLI command.
func (s *StatsService) GetLinkStats(theSlug string) (*models.Link, int64, error) {
	theSlug = strings.ToLower(theSlug)

	link, err := s.linkRepo.GetLinkBySlug(theSlug)
	if err != nil {
		return nil, 0, err
	}
	totalClicks, err := s.clickRepo.CountClicksBySlug(theSlug)
	if err != nil {
		return nil, 0, err
	}
	return link, totalClicks, nil
}
