package enrich

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// coordinates of the state capitals the simulation covers.
var stateCoordinates = map[string][2]float64{
	"SP": {-23.55, -46.63},
	"RJ": {-22.90, -43.20},
	"MG": {-19.92, -43.94},
	"PR": {-25.42, -49.27},
}

// StaticGeocoder resolves the simulated state coordinate table. Unknown
// states resolve to the zero coordinate rather than failing; enrichment
// quality is best-effort.
type StaticGeocoder struct{}

func NewStaticGeocoder() *StaticGeocoder { return &StaticGeocoder{} }

func (g *StaticGeocoder) Locate(_ context.Context, state string) (float64, float64, error) {
	if c, ok := stateCoordinates[strings.ToUpper(state)]; ok {
		return c[0], c[1], nil
	}
	return 0, 0, nil
}

// CachedGeocoder fronts another geocoder with a Redis cache so repeated
// lookups for the same state skip the upstream call. Cache failures fall
// through to the wrapped geocoder; the cache is an optimization, not a
// dependency.
type CachedGeocoder struct {
	next   Geocoder
	client *redis.Client
	ttl    time.Duration
}

// NewCachedGeocoder wraps next with a Redis cache. A nil client disables
// caching entirely.
func NewCachedGeocoder(next Geocoder, client *redis.Client, ttl time.Duration) *CachedGeocoder {
	return &CachedGeocoder{next: next, client: client, ttl: ttl}
}

func (g *CachedGeocoder) Locate(ctx context.Context, state string) (float64, float64, error) {
	if g.client == nil {
		return g.next.Locate(ctx, state)
	}

	key := "dataguard:geocode:" + strings.ToUpper(state)
	if cached, err := g.client.Get(ctx, key).Result(); err == nil {
		if lat, lng, ok := parseCoordinate(cached); ok {
			return lat, lng, nil
		}
	}

	lat, lng, err := g.next.Locate(ctx, state)
	if err != nil {
		return 0, 0, err
	}
	// Best effort write; a full or unreachable cache must not fail enrichment.
	g.client.Set(ctx, key, fmt.Sprintf("%g,%g", lat, lng), g.ttl)
	return lat, lng, nil
}

func parseCoordinate(s string) (float64, float64, bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lng, true
}
