package handlers

import (
	"net/url"
	"time"

	"awqat-hq/gateway/pkg/cache"
)

// route describes one /api/awqat endpoint.
type route struct {
	// name is the path segment under /api/awqat and the metric label.
	name string

	// param is the required query parameter, empty for none.
	param string

	// upstream is the provider path prefix; the escaped param value is
	// appended to it.
	upstream string

	// message is the client error for a failed fetch.
	message string

	// cacheKey returns the key and TTL for a request. A zero TTL means the
	// route is served straight from the upstream.
	cacheKey func(p *cache.Policy, id string, now time.Time) (string, time.Duration)
}

func (rt route) pattern() string {
	return "GET /api/awqat/" + rt.name
}

func (rt route) upstreamPath(id string) string {
	if rt.param == "" {
		return rt.upstream
	}
	return rt.upstream + url.PathEscape(id)
}

var routes = []route{
	{
		name:     "countries",
		upstream: "/api/Place/Countries",
		message:  "Failed to fetch countries",
		cacheKey: func(p *cache.Policy, _ string, _ time.Time) (string, time.Duration) {
			return cache.CountriesKey(), p.Lookup
		},
	},
	{
		name:     "states",
		param:    "countryId",
		upstream: "/api/Place/States/",
		message:  "Failed to fetch states",
		cacheKey: func(p *cache.Policy, id string, _ time.Time) (string, time.Duration) {
			return cache.StatesKey(id), p.Lookup
		},
	},
	{
		name:     "cities",
		param:    "stateId",
		upstream: "/api/Place/Cities/",
		message:  "Failed to fetch cities",
		cacheKey: func(p *cache.Policy, id string, _ time.Time) (string, time.Duration) {
			return cache.CitiesKey(id), p.Lookup
		},
	},
	{
		name:     "daily",
		param:    "cityId",
		upstream: "/api/PrayerTime/Daily/",
		message:  "Failed to fetch daily prayer times",
		cacheKey: func(p *cache.Policy, id string, now time.Time) (string, time.Duration) {
			return p.DailyKey(id, now), p.Daily
		},
	},
	{
		name:     "monthly",
		param:    "cityId",
		upstream: "/api/PrayerTime/Monthly/",
		message:  "Failed to fetch monthly prayer times",
		cacheKey: func(p *cache.Policy, id string, now time.Time) (string, time.Duration) {
			return p.MonthlyKey(id, now), p.Monthly
		},
	},
}
