package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/acolella/linkshort/internal/errors"
	"github.com/acolella/linkshort/internal/models"
)

// LinkRepository defines the data access methods for links.
type LinkRepository interface {
	CreateLink(link *models.Link) error
	GetLinkBySlug(slug string) (*models.Link, error)
	LinkExists(slug string) (bool, error)
	// IncrementViews bumps the view counter by one in a single UPDATE and
	// returns the number of affected rows (0 means the slug is unknown).
	IncrementViews(slug string, at time.Time) (int64, error)
	CountLinks() (int64, error)
	GetAllLinks() ([]models.Link, error)
}

// GormLinkRepository is the LinkRepository implementation backed by GORM.
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates and returns a new GormLinkRepository.
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// CreateLink inserts a new link. The primary key on slug is the final
// arbiter for uniqueness: two concurrent creates for the same slug can
// both pass the caller's existence pre-check, but only one insert wins.
func (r *GormLinkRepository) CreateLink(link *models.Link) error {
	if err := r.db.Create(link).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("slug %q: %w", link.Slug, apperrors.ErrSlugAlreadyExists)
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// GetLinkBySlug retrieves a link by its slug.
func (r *GormLinkRepository) GetLinkBySlug(slug string) (*models.Link, error) {
	var link models.Link
	if err := r.db.Where("slug = ?", slug).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("slug %q: %w", slug, apperrors.ErrSlugNotFound)
		}
		return nil, fmt.Errorf("failed to get link %q: %w", slug, err)
	}
	return &link, nil
}

// LinkExists reports whether a slug is already allocated.
func (r *GormLinkRepository) LinkExists(slug string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Link{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check existence of slug %q: %w", slug, err)
	}
	return count > 0, nil
}

// IncrementViews performs the atomic view-count update. The increment
// happens inside the UPDATE expression itself, so N concurrent
// resolutions always sum to exactly N.
func (r *GormLinkRepository) IncrementViews(slug string, at time.Time) (int64, error) {
	res := r.db.Model(&models.Link{}).Where("slug = ?", slug).UpdateColumns(map[string]interface{}{
		"views":          gorm.Expr("views + 1"),
		"last_change_at": at,
	})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to increment views for slug %q: %w", slug, res.Error)
	}
	return res.RowsAffected, nil
}

// CountLinks returns the total number of links in the registry.
func (r *GormLinkRepository) CountLinks() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Link{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}

// GetAllLinks retrieves every link, used by the destination monitor.
func (r *GormLinkRepository) GetAllLinks() ([]models.Link, error) {
	var links []models.Link
	if err := r.db.Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all links: %w", err)
	}
	return links, nil
}

// isDuplicateKey detects unique-constraint violations. GORM's error
// translation covers drivers that implement it; the string check keeps
// the sqlite fallback working when translation is disabled.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
