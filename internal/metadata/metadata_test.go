package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const chromeOnWindows = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestDerive(t *testing.T) {
	t.Run("full derivation", func(t *testing.T) {
		d := Derive(chromeOnWindows, "https://news.ycombinator.com/")
		assert.Equal(t, "Chrome", d.Browser)
		assert.Equal(t, "Windows", d.OS)
		assert.Equal(t, "https://news.ycombinator.com/", d.Referrer)
		assert.Empty(t, d.Degraded)
	})

	t.Run("empty user agent degrades browser and os", func(t *testing.T) {
		d := Derive("", "https://example.com/")
		assert.Equal(t, UnknownAgent, d.Browser)
		assert.Equal(t, UnknownAgent, d.OS)
		assert.Contains(t, d.Degraded, "empty user agent")
	})

	t.Run("garbage user agent degrades", func(t *testing.T) {
		d := Derive("%%%not-a-real-agent%%%", "")
		assert.Equal(t, UnknownAgent, d.Browser)
		assert.Equal(t, UnknownAgent, d.OS)
		assert.NotEmpty(t, d.Degraded)
	})

	t.Run("missing referrer defaults to None", func(t *testing.T) {
		d := Derive(chromeOnWindows, "")
		assert.Equal(t, NoReferrer, d.Referrer)
		assert.Contains(t, d.Degraded, "no referrer")
	})
}
