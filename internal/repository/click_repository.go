package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/acolella/linkshort/internal/models"
)

// ClickRepository defines the data access methods for click events.
type ClickRepository interface {
	CreateClick(click *models.Click) error
	CountClicksBySlug(slug string) (int64, error)
	// GroupCountBySlug tallies clicks for a slug grouped by one of the
	// categorical columns (browser, os, country, referrer).
	GroupCountBySlug(slug, column string) (map[string]int, error)
}

// categoricalColumns allow-lists the columns GroupCountBySlug may group
// by. The column name is interpolated into SQL, so it must never come
// from user input directly.
var categoricalColumns = map[string]struct{}{
	"browser":  {},
	"os":       {},
	"country":  {},
	"referrer": {},
}

// GormClickRepository is the ClickRepository implementation backed by GORM.
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository creates and returns a new GormClickRepository.
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// CreateClick appends one click event. Clicks need no coordination
// between each other; rows are immutable once written.
func (r *GormClickRepository) CreateClick(click *models.Click) error {
	if err := r.db.Create(click).Error; err != nil {
		return fmt.Errorf("failed to create click: %w", err)
	}
	return nil
}

// CountClicksBySlug counts all recorded clicks for a slug.
func (r *GormClickRepository) CountClicksBySlug(slug string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Click{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks for slug %q: %w", slug, err)
	}
	return count, nil
}

// GroupCountBySlug computes exact tallies over the full click set for
// one categorical column. No caching, no sampling: the result reflects
// the live table at call time.
func (r *GormClickRepository) GroupCountBySlug(slug, column string) (map[string]int, error) {
	if _, ok := categoricalColumns[column]; !ok {
		return nil, fmt.Errorf("column %q is not a categorical click column", column)
	}

	var rows []struct {
		Value string
		Total int
	}
	err := r.db.Model(&models.Click{}).
		Select(column+" as value, count(*) as total").
		Where("slug = ?", slug).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s for slug %q: %w", column, slug, err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Value] = row.Total
	}
	return counts, nil
}
