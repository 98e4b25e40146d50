package providers

import (
	"strings"
	"time"
	// Embed the timezone database so city lookups work regardless of the
	// host's zoneinfo installation.
	_ "time/tzdata"
	"unicode"

	"cityinfo.app/models"
)

const fallbackTimezone = "Etc/UTC"

// Probe order is fixed; the first region containing a zone named after the
// city wins.
var timezoneRegions = []string{
	"Europe",
	"America",
	"Asia",
	"Africa",
	"Australia",
	"Pacific",
	"Atlantic",
}

// LocalTimeProvider resolves a city's local time from the IANA timezone
// database. It is offline and never fails: cities matching no known zone
// fall back to UTC.
type LocalTimeProvider struct {
	now func() time.Time
}

// NewLocalTimeProvider creates a new offline time provider
func NewLocalTimeProvider() *LocalTimeProvider {
	return &LocalTimeProvider{now: time.Now}
}

// FetchTime resolves the local time for a city
func (p *LocalTimeProvider) FetchTime(city string) *models.TimeInfo {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return p.timeIn(fallbackTimezone)
	}

	name := canonicalizeZoneName(trimmed)
	for _, region := range timezoneRegions {
		candidate := region + "/" + name
		if _, err := time.LoadLocation(candidate); err == nil {
			return p.timeIn(candidate)
		}
	}

	return p.timeIn(fallbackTimezone)
}

func (p *LocalTimeProvider) timeIn(timezone string) *models.TimeInfo {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	now := p.now().In(loc)
	return &models.TimeInfo{
		Timezone:  timezone,
		Datetime:  now.Format(time.RFC3339),
		UTCOffset: now.Format("-07:00"),
	}
}

// canonicalizeZoneName turns "new york" or "rio-de-janeiro" into the
// underscore-joined capitalized form used by IANA zone names.
func canonicalizeZoneName(city string) string {
	words := strings.FieldsFunc(city, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})

	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	return strings.Join(words, "_")
}
