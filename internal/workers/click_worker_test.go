package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/acolella/linkshort/internal/geoip"
	"github.com/acolella/linkshort/internal/models"
	"github.com/acolella/linkshort/internal/repository"
)

const chromeOnLinux = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// stubResolver returns a fixed country or error without any network.
type stubResolver struct {
	country string
	err     error
}

func (s stubResolver) Country(_ context.Context, _ string) (string, error) {
	if s.err != nil {
		return geoip.NoCountry, s.err
	}
	return s.country, nil
}

func newClickTestDB(t *testing.T) (*gorm.DB, repository.ClickRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Link{}, &models.Click{}))

	// Parent link so the click foreign key holds.
	require.NoError(t, db.Create(&models.Link{Slug: "abcd", Destination: "http://a.com"}).Error)
	return db, repository.NewClickRepository(db)
}

func processEvents(t *testing.T, clickRepo repository.ClickRepository, resolver geoip.Resolver, events ...models.ClickEvent) {
	t.Helper()
	ch := make(chan models.ClickEvent, len(events))
	wg := StartClickWorkers(2, ch, clickRepo, resolver, time.Second)
	for _, e := range events {
		ch <- e
	}
	close(ch)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not drain in time")
	}
}

func TestClickWorkerPersistsDerivedClick(t *testing.T) {
	db, clickRepo := newClickTestDB(t)

	processEvents(t, clickRepo, stubResolver{country: "Germany"}, models.ClickEvent{
		Slug:      "abcd",
		Timestamp: time.Now(),
		UserAgent: chromeOnLinux,
		Referrer:  "https://example.org/post",
		IPAddress: "203.0.113.9",
	})

	var click models.Click
	require.NoError(t, db.First(&click).Error)
	assert.Equal(t, "abcd", click.Slug)
	assert.Equal(t, "Chrome", click.Browser)
	assert.Equal(t, "Linux", click.OS)
	assert.Equal(t, "Germany", click.Country)
	assert.Equal(t, "https://example.org/post", click.Referrer)
}

func TestClickWorkerDegradedMetadata(t *testing.T) {
	db, clickRepo := newClickTestDB(t)

	processEvents(t, clickRepo, stubResolver{err: errors.New("geo provider down")}, models.ClickEvent{
		Slug:      "abcd",
		Timestamp: time.Now(),
		UserAgent: "",
		Referrer:  "",
		IPAddress: "203.0.113.9",
	})

	var click models.Click
	require.NoError(t, db.First(&click).Error)
	assert.Equal(t, "Unknown", click.Browser)
	assert.Equal(t, "Unknown", click.OS)
	assert.Equal(t, "None", click.Country)
	assert.Equal(t, "None", click.Referrer)
}

func TestClickWorkerNilResolver(t *testing.T) {
	db, clickRepo := newClickTestDB(t)

	processEvents(t, clickRepo, nil, models.ClickEvent{
		Slug:      "abcd",
		Timestamp: time.Now(),
		UserAgent: chromeOnLinux,
		IPAddress: "203.0.113.9",
	})

	var click models.Click
	require.NoError(t, db.First(&click).Error)
	assert.Equal(t, "None", click.Country)
}

func TestClickWorkerProcessesManyEvents(t *testing.T) {
	db, clickRepo := newClickTestDB(t)

	events := make([]models.ClickEvent, 50)
	for i := range events {
		events[i] = models.ClickEvent{
			Slug:      "abcd",
			Timestamp: time.Now(),
			UserAgent: chromeOnLinux,
			IPAddress: "203.0.113.9",
		}
	}
	processEvents(t, clickRepo, stubResolver{country: "France"}, events...)

	var count int64
	require.NoError(t, db.Model(&models.Click{}).Count(&count).Error)
	assert.Equal(t, int64(50), count)
}
