package gridmap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		m := randomMap(t, rng, 1+rng.Intn(12), 1+rng.Intn(12))
		data, err := m.Marshal()
		require.NoError(t, err)

		got, err := Unmarshal(data)
		require.NoError(t, err)
		require.True(t, m.Equal(got), "round trip changed the map:\n%s\nvs\n%s", m, got)
		require.Equal(t, m.Cells(), got.Cells())
		require.Equal(t, m.PixelsPerCell(), got.PixelsPerCell())
	}
}

func TestUnmarshal_NewerVersionRejected(t *testing.T) {
	_, err := Unmarshal([]byte(`{"version":2,"rows":1,"cols":1,"cells":[{"k":"normal","cost":1}]}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestUnmarshal_ToleratesOlderAndUnknownFields(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"rows": 1, "cols": 3,
		"author": "someone",
		"cells": [
			{"k": "normal"},
			{"k": "oneway", "dir": "left", "target": {"row": 0, "col": 2}, "colour": "red"},
			{"k": "invalid"}
		]
	}`)
	m, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultPixelsPerCell, m.PixelsPerCell(), "missing scale defaults")
	assert.Equal(t, Normal(1), m.CellAt(Point{0, 0}), "missing cost defaults to 1")
	assert.Equal(t, OneWay(DirLeft, 1).WithTarget(Point{0, 2}), m.CellAt(Point{0, 1}))
	assert.Equal(t, Invalid(), m.CellAt(Point{0, 2}))
}

func TestUnmarshal_Corrupt(t *testing.T) {
	cases := map[string]string{
		"not json":        `{`,
		"length mismatch": `{"version":1,"rows":2,"cols":2,"cells":[]}`,
		"bad dims":        `{"version":1,"rows":0,"cols":2,"cells":[]}`,
		"bad kind":        `{"version":1,"rows":1,"cols":1,"cells":[{"k":"lava"}]}`,
		"bad direction":   `{"version":1,"rows":1,"cols":1,"cells":[{"k":"oneway","dir":"north"}]}`,
		"self target":     `{"version":1,"rows":1,"cols":2,"cells":[{"k":"oneway","dir":"up","target":{"row":0,"col":0}},{"k":"invalid"}]}`,
		"negative cost":   `{"version":1,"rows":1,"cols":1,"cells":[{"k":"normal","cost":-1}]}`,
		"overflowing":     `{"version":1,"rows":4294967296,"cols":4294967296,"cells":[]}`,
		"oversized":       `{"version":1,"rows":1000000,"cols":1000000,"cells":[]}`,
		"negative rows":   `{"version":1,"rows":-1,"cols":-1,"cells":[{"k":"invalid"}]}`,
		"too many cells":  `{"version":1,"rows":1,"cols":1,"cells":[{"k":"invalid"},{"k":"invalid"}]}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Unmarshal([]byte(data))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}
