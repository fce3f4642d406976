package cache

import (
	"strings"
	"time"

	"awqat-hq/gateway/pkg/config"
)

// Policy is the TTL and calendar configuration applied by the routes. It is
// swapped atomically when the configuration file is reloaded.
type Policy struct {
	// Daily is the TTL for daily prayer times.
	Daily time.Duration

	// Monthly is the TTL for monthly prayer times.
	Monthly time.Duration

	// Lookup is the TTL for country, state and city lookups. Zero disables
	// lookup caching.
	Lookup time.Duration

	// Location is the zone in which calendar keys are computed.
	Location *time.Location
}

// PolicyFromConfig builds a Policy with clamped TTLs.
func PolicyFromConfig(cfg config.CacheConfig) *Policy {
	return &Policy{
		Daily:    cfg.DailyTTL(),
		Monthly:  cfg.MonthlyTTL(),
		Lookup:   cfg.LookupTTL(),
		Location: cfg.Location(),
	}
}

// DailyKey returns "daily:<cityID>:<YYYY-MM-DD>" for the date of now in the
// policy's zone.
func (p *Policy) DailyKey(cityID string, now time.Time) string {
	return "daily:" + cityID + ":" + now.In(p.location()).Format("2006-01-02")
}

// MonthlyKey returns "monthly:<cityID>:<YYYY-MM>" for the month of now in the
// policy's zone.
func (p *Policy) MonthlyKey(cityID string, now time.Time) string {
	return "monthly:" + cityID + ":" + now.In(p.location()).Format("2006-01")
}

func (p *Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// CountriesKey returns the key for the country list.
func CountriesKey() string { return "countries" }

// StatesKey returns the key for a country's states.
func StatesKey(countryID string) string { return "states:" + countryID }

// CitiesKey returns the key for a state's cities.
func CitiesKey(stateID string) string { return "cities:" + stateID }

// name returns the metric label for key: its prefix before the first colon.
func name(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
