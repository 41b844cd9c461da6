package models

import "time"

// Click represents one recorded resolution of a short link, with the
// categorical metadata derived from the request. Rows are append-only and
// are removed only when the owning Link is deleted (cascade).
type Click struct {
	// ID is the primary key with auto-increment functionality.
	ID uint `gorm:"primaryKey"`

	// Slug references the owning Link. Indexed because every aggregation
	// query filters on it.
	Slug string `gorm:"size:30;index;not null"`

	// Link establishes the GORM relationship to the Link model so the
	// clicks table carries a foreign key with ON DELETE CASCADE.
	Link Link `gorm:"foreignKey:Slug;references:Slug;constraint:OnDelete:CASCADE"`

	// Browser and OS are normalized categories parsed from the user agent,
	// "Unknown" when the agent string is absent or unparseable.
	Browser string `gorm:"size:100"`
	OS      string `gorm:"size:100"`

	// Country comes from the GeoIP lookup, "None" on any failure.
	Country string `gorm:"size:100"`

	// Referrer is the referring page, "None" when the header is absent.
	Referrer string `gorm:"size:500"`

	// CreatedAt records when the click occurred.
	CreatedAt time.Time
}

// ClickEvent is the raw click passed through the analytics channel.
// It carries only what the redirect handler can capture without any
// parsing or outbound calls; workers derive the rest later.
type ClickEvent struct {
	Slug      string    // Slug of the link that was resolved
	Timestamp time.Time // When the resolution happened
	UserAgent string    // Raw User-Agent header
	Referrer  string    // Raw Referer header
	IPAddress string    // Client IP for country lookup
}
