// Package timezone resolves user locales to IANA time zone locations.
package timezone

import "time"

// Resolver maps ISO 3166-1 alpha-2 country codes to a representative IANA
// zone and loads zone IDs with a UTC fallback.
type Resolver struct {
	byCountry map[string]string
}

// countryZones covers the countries the service has users in. A country with
// several zones maps to the zone of its most populous city.
var countryZones = map[string]string{
	"AR": "America/Argentina/Buenos_Aires",
	"AU": "Australia/Sydney",
	"BR": "America/Sao_Paulo",
	"BY": "Europe/Minsk",
	"CA": "America/Toronto",
	"CN": "Asia/Shanghai",
	"DE": "Europe/Berlin",
	"ES": "Europe/Madrid",
	"FR": "Europe/Paris",
	"GB": "Europe/London",
	"IN": "Asia/Kolkata",
	"IT": "Europe/Rome",
	"JP": "Asia/Tokyo",
	"KZ": "Asia/Almaty",
	"MX": "America/Mexico_City",
	"NL": "Europe/Amsterdam",
	"PL": "Europe/Warsaw",
	"PT": "Europe/Lisbon",
	"RU": "Europe/Moscow",
	"TR": "Europe/Istanbul",
	"UA": "Europe/Kyiv",
	"US": "America/New_York",
	"UZ": "Asia/Tashkent",
}

func NewResolver() *Resolver {
	return &Resolver{byCountry: countryZones}
}

// ResolveCountry returns the IANA zone ID for a country code, or ok=false
// when the country is unknown.
func (r *Resolver) ResolveCountry(code string) (string, bool) {
	zone, ok := r.byCountry[code]
	return zone, ok
}

// Load parses a zone ID into a Location. Unknown or empty IDs fall back to
// UTC; callers that care about the fallback check ok.
func (r *Resolver) Load(zoneID string) (*time.Location, bool) {
	if zoneID == "" {
		return time.UTC, false
	}
	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}

// ForCountry resolves a country code straight to a Location, falling back to
// UTC when the country or its zone is unknown.
func (r *Resolver) ForCountry(code string) (*time.Location, bool) {
	zone, ok := r.ResolveCountry(code)
	if !ok {
		return time.UTC, false
	}
	return r.Load(zone)
}
