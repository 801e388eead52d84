// internal/models/board_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSpecialPositions(t *testing.T) {
	sp := DefaultSpecialPositions(10)
	assert.Equal(t, 0, sp.Start)
	assert.Equal(t, 9, sp.Prison)
	assert.Equal(t, 19, sp.Vacation)
	assert.Equal(t, 29, sp.GoToPrison)

	sp = DefaultSpecialPositions(11)
	assert.Equal(t, 10, sp.Prison)
	assert.Equal(t, 21, sp.Vacation)
	assert.Equal(t, 32, sp.GoToPrison)
}

func TestBoardContentAtBounds(t *testing.T) {
	b := &Board{
		Positions: []TileContent{
			{Title: "Start", Type: TileStart},
			{Title: "Somewhere", Type: TileProperty, Property: &PropertyInfo{Price: 60}},
		},
	}
	require.Equal(t, 2, b.TrackLength())

	assert.Nil(t, b.ContentAt(-1))
	assert.Nil(t, b.ContentAt(2))
	require.NotNil(t, b.ContentAt(1))
	assert.Equal(t, "Somewhere", b.ContentAt(1).Title)
}

func TestNewPublicID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := NewPublicID()
		require.Len(t, id, 6)
		for _, c := range id {
			assert.Contains(t, publicIDAlphabet, string(c))
		}
		seen[id] = true
	}
	// 50 draws over 36^6 values should not all collide
	assert.Greater(t, len(seen), 1)
}

func TestDicePair(t *testing.T) {
	d := DicePair{Die1: 4, Die2: 2}
	assert.Equal(t, 6, d.Total())
	assert.False(t, d.IsDouble())

	d = DicePair{Die1: 5, Die2: 5}
	assert.Equal(t, 10, d.Total())
	assert.True(t, d.IsDouble())
}
