package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	apperrors "github.com/acolella/linkshort/internal/errors"
	"github.com/acolella/linkshort/internal/models"
	"github.com/acolella/linkshort/internal/repository"
	"github.com/acolella/linkshort/internal/slug"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection keeps the in-memory database shared and serializes
	// concurrent writers the way the file-backed store would.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Link{}, &models.Click{}))
	return db
}

func newTestLinkService(t *testing.T) (*LinkService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	linkRepo := repository.NewLinkRepository(db)
	generator := slug.NewGenerator(4, 6)
	return NewLinkService(linkRepo, generator, nil, 4, 20), db
}

func TestCreateLinkGeneratedSlug(t *testing.T) {
	svc, _ := newTestLinkService(t)

	link, err := svc.CreateLink("https://example.com/page", "")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(link.Slug), 4)
	assert.LessOrEqual(t, len(link.Slug), 6)
	for _, c := range link.Slug {
		assert.Contains(t, slug.Alphabet, string(c))
	}

	got, err := svc.GetLink(link.Slug)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", got.Destination)
	assert.Equal(t, uint64(0), got.Views)
}

func TestCreateLinkDestinationNormalization(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare host gets http", "example.com", "http://example.com"},
		{"http preserved", "http://example.com", "http://example.com"},
		{"https preserved", "https://example.com", "https://example.com"},
		{"path preserved", "example.com/a?b=c", "http://example.com/a?b=c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestLinkService(t)
			link, err := svc.CreateLink(tt.in, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, link.Destination)
		})
	}
}

func TestCreateLinkEmptyDestination(t *testing.T) {
	svc, _ := newTestLinkService(t)
	_, err := svc.CreateLink("", "abcd")
	assert.ErrorIs(t, err, apperrors.ErrInvalidDestination)
}

func TestCreateLinkCustomSlug(t *testing.T) {
	svc, _ := newTestLinkService(t)

	link, err := svc.CreateLink("http://a.com", "abcd")
	require.NoError(t, err)
	assert.Equal(t, "abcd", link.Slug)
	assert.Equal(t, "http://a.com", link.Destination)
	assert.Equal(t, uint64(0), link.Views)
}

func TestCreateLinkCustomSlugLowerCased(t *testing.T) {
	svc, _ := newTestLinkService(t)

	link, err := svc.CreateLink("http://a.com", "MyLink")
	require.NoError(t, err)
	assert.Equal(t, "mylink", link.Slug)
}

func TestCreateLinkValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr error
	}{
		{"invalid character", "ab!d", apperrors.ErrInvalidCharacter},
		{"too short", "ab", apperrors.ErrInvalidLength},
		{"too long", strings.Repeat("a", 21), apperrors.ErrInvalidLength},
		{"reserved", "stats", apperrors.ErrSlugReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestLinkService(t)
			_, err := svc.CreateLink("http://a.com", tt.slug)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateLinkNoOverwrite(t *testing.T) {
	svc, _ := newTestLinkService(t)

	_, err := svc.CreateLink("http://first.com", "abcd")
	require.NoError(t, err)

	_, err = svc.CreateLink("http://second.com", "abcd")
	assert.ErrorIs(t, err, apperrors.ErrSlugAlreadyExists)

	// The stored destination is still the first one.
	got, err := svc.GetLink("abcd")
	require.NoError(t, err)
	assert.Equal(t, "http://first.com", got.Destination)
}

func TestGetLinkNotFound(t *testing.T) {
	svc, _ := newTestLinkService(t)
	_, err := svc.GetLink("nope")
	assert.ErrorIs(t, err, apperrors.ErrSlugNotFound)
}

func TestResolveMixedCase(t *testing.T) {
	svc, _ := newTestLinkService(t)

	_, err := svc.CreateLink("http://a.com", "abcd")
	require.NoError(t, err)

	dest, err := svc.Resolve("ABCD")
	require.NoError(t, err)
	assert.Equal(t, "http://a.com", dest)

	got, err := svc.GetLink("abcd")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Views)
}

func TestResolveNotFound(t *testing.T) {
	svc, _ := newTestLinkService(t)
	_, err := svc.Resolve("missing")
	assert.ErrorIs(t, err, apperrors.ErrSlugNotFound)
}

func TestResolveUpdatesLastChange(t *testing.T) {
	svc, _ := newTestLinkService(t)

	link, err := svc.CreateLink("http://a.com", "abcd")
	require.NoError(t, err)

	_, err = svc.Resolve("abcd")
	require.NoError(t, err)

	got, err := svc.GetLink("abcd")
	require.NoError(t, err)
	assert.False(t, got.LastChangeAt.Before(link.LastChangeAt))
}

func TestResolveConcurrentNoLostUpdates(t *testing.T) {
	svc, _ := newTestLinkService(t)

	_, err := svc.CreateLink("http://a.com", "abcd")
	require.NoError(t, err)

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Resolve("abcd")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.GetLink("abcd")
	require.NoError(t, err)
	assert.Equal(t, uint64(n), got.Views)
}

func TestCountLinks(t *testing.T) {
	svc, _ := newTestLinkService(t)

	count, err := svc.CountLinks()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateLink(fmt.Sprintf("http://site%d.com", i), "")
		require.NoError(t, err)
	}

	count, err = svc.CountLinks()
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
