package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilepaint/internal/app"
	"tilepaint/internal/tile"
	"tilepaint/pkg/colorutil"
)

const sample = `{
  "actions": [
    {"op": "color", "color": "red"},
    {"op": "brush", "size": 8},
    {"op": "down", "x": 10, "y": 10},
    {"op": "drag", "x": 100, "y": 10},
    {"op": "up"},
    {"op": "zoom", "zoom": 2},
    {"op": "down", "x": 600, "y": 20},
    {"op": "drag", "x": 640, "y": 20}
  ]
}`

func TestParseAndRun(t *testing.T) {
	s, err := ParseScript(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, s.Actions, 8)
	assert.Equal(t, OpColor, s.Actions[0].Op)

	state := app.NewState(nil)
	require.NoError(t, s.Run(state))
	assert.Equal(t, colorutil.Red, state.Color())
	assert.Equal(t, 8, state.BrushSize())
	assert.Equal(t, 2.0, state.Zoom())
	assert.Equal(t, 2, state.UndoDepth(), "trailing stroke is committed")
	assert.Equal(t, []tile.Coord{{I: 0, J: 0}, {I: 1, J: 0}}, state.TileCoords())
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"not json", `{`, "parse script"},
		{"unknown field", `{"actions":[{"op":"up"}],"speed":3}`, "parse script"},
		{"empty", `{"actions":[]}`, "no actions"},
		{"unknown op", `{"actions":[{"op":"erase"}]}`, "unknown op"},
		{"bad colour", `{"actions":[{"op":"color","color":"mauve"}]}`, "unknown colour"},
		{"missing zoom", `{"actions":[{"op":"zoom"}]}`, "positive factor"},
		{"missing size", `{"actions":[{"op":"brush"}]}`, "positive size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript(strings.NewReader(tt.in))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestRunStopsOnRejectedZoom(t *testing.T) {
	s, err := ParseScript(strings.NewReader(`{"actions":[{"op":"zoom","zoom":1.5},{"op":"clear"}]}`))
	require.NoError(t, err)
	err = s.Run(app.NewState(nil))
	assert.ErrorContains(t, err, "action 0 (zoom)")
}
