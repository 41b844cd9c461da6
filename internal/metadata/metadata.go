// Package metadata derives normalized click categories from raw request
// headers. Derivation never fails: missing or unparseable inputs degrade
// to placeholder categories, and every degradation is reported explicitly
// so callers and tests can observe it instead of relying on swallowed
// errors.
package metadata

import (
	ua "github.com/mileusna/useragent"
)

// Placeholder categories for degraded fields.
const (
	UnknownAgent = "Unknown" // browser/OS when the agent string yields nothing
	NoReferrer   = "None"    // referrer when the header is absent
)

// Derived holds the normalized categories extracted from one request.
type Derived struct {
	Browser  string
	OS       string
	Referrer string

	// Degraded lists the reasons any field fell back to a placeholder.
	// Empty means full derivation succeeded.
	Degraded []string
}

// Derive parses the user agent and referrer headers into categorical
// values. Country is not derived here; it needs an outbound lookup and
// lives with the GeoIP resolver.
func Derive(userAgent, referrer string) Derived {
	d := Derived{
		Browser:  UnknownAgent,
		OS:       UnknownAgent,
		Referrer: NoReferrer,
	}

	if userAgent == "" {
		d.Degraded = append(d.Degraded, "empty user agent")
	} else {
		parsed := ua.Parse(userAgent)
		if parsed.Name != "" {
			d.Browser = parsed.Name
		}
		if parsed.OS != "" {
			d.OS = parsed.OS
		}
		if parsed.Name == "" && parsed.OS == "" {
			d.Degraded = append(d.Degraded, "unparseable user agent")
		}
	}

	if referrer == "" {
		d.Degraded = append(d.Degraded, "no referrer")
	} else {
		d.Referrer = referrer
	}

	return d
}
