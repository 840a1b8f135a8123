package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticGeocoder_KnownStates(t *testing.T) {
	g := NewStaticGeocoder()

	lat, lng, err := g.Locate(context.Background(), "MG")
	require.NoError(t, err)
	assert.InDelta(t, -19.92, lat, 0.001)
	assert.InDelta(t, -43.94, lng, 0.001)

	// Lookup is case-insensitive.
	lat, _, err = g.Locate(context.Background(), "sp")
	require.NoError(t, err)
	assert.InDelta(t, -23.55, lat, 0.001)
}

func TestStaticGeocoder_UnknownStateIsZeroNotError(t *testing.T) {
	g := NewStaticGeocoder()

	lat, lng, err := g.Locate(context.Background(), "XX")
	require.NoError(t, err)
	assert.Zero(t, lat)
	assert.Zero(t, lng)
}

func TestCachedGeocoder_NilClientPassesThrough(t *testing.T) {
	g := NewCachedGeocoder(NewStaticGeocoder(), nil, time.Minute)

	lat, lng, err := g.Locate(context.Background(), "PR")
	require.NoError(t, err)
	assert.InDelta(t, -25.42, lat, 0.001)
	assert.InDelta(t, -49.27, lng, 0.001)
}

func TestParseCoordinate(t *testing.T) {
	lat, lng, ok := parseCoordinate("-23.55,-46.63")
	require.True(t, ok)
	assert.InDelta(t, -23.55, lat, 0.001)
	assert.InDelta(t, -46.63, lng, 0.001)

	_, _, ok = parseCoordinate("not-a-coordinate")
	assert.False(t, ok)

	_, _, ok = parseCoordinate("1.0,abc")
	assert.False(t, ok)
}
