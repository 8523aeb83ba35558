package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"tilepaint/internal/app"
	"tilepaint/pkg/colorutil"
)

// Op names a script action.
type Op string

const (
	OpDown   Op = "down"
	OpDrag   Op = "drag"
	OpUp     Op = "up"
	OpUndo   Op = "undo"
	OpZoom   Op = "zoom"
	OpScroll Op = "scroll"
	OpColor  Op = "color"
	OpBrush  Op = "brush"
	OpClear  Op = "clear"
)

// Action is one recorded input event. Coordinates are in view space.
type Action struct {
	Op    Op      `json:"op"`
	X     int     `json:"x,omitempty"`
	Y     int     `json:"y,omitempty"`
	Zoom  float64 `json:"zoom,omitempty"`
	Color string  `json:"color,omitempty"`
	Size  int     `json:"size,omitempty"`
}

// Script is a recorded painting session.
type Script struct {
	Background string   `json:"background,omitempty"`
	Actions    []Action `json:"actions"`
}

var errEmptyScript = errors.New("script has no actions")

// ParseScript decodes and checks a script.
func ParseScript(r io.Reader) (*Script, error) {
	var s Script
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Actions) == 0 {
		return nil, errEmptyScript
	}
	for i, a := range s.Actions {
		if err := a.validate(); err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
	}
	return &s, nil
}

func (a Action) validate() error {
	switch a.Op {
	case OpDown, OpDrag, OpUp, OpUndo, OpScroll, OpClear:
		return nil
	case OpZoom:
		if a.Zoom <= 0 {
			return fmt.Errorf("zoom needs a positive factor")
		}
	case OpColor:
		if _, err := colorutil.Parse(a.Color); err != nil {
			return err
		}
	case OpBrush:
		if a.Size <= 0 {
			return fmt.Errorf("brush needs a positive size")
		}
	default:
		return fmt.Errorf("unknown op %q", a.Op)
	}
	return nil
}

// Run replays the actions against state. It stops at the first action the
// session rejects.
func (s *Script) Run(state *app.State) error {
	for i, a := range s.Actions {
		if err := apply(state, a); err != nil {
			return fmt.Errorf("action %d (%s): %w", i, a.Op, err)
		}
	}
	state.PointerUp()
	return nil
}

func apply(state *app.State, a Action) error {
	switch a.Op {
	case OpDown:
		state.PointerDown(a.X, a.Y)
	case OpDrag:
		state.PointerDrag(a.X, a.Y)
	case OpUp:
		state.PointerUp()
	case OpUndo:
		state.Undo()
	case OpZoom:
		return state.SetZoom(a.Zoom)
	case OpScroll:
		state.SetScroll(a.X, a.Y)
	case OpColor:
		c, err := colorutil.Parse(a.Color)
		if err != nil {
			return err
		}
		state.SetColor(c)
	case OpBrush:
		state.SetBrushSize(a.Size)
	case OpClear:
		state.Clear()
	}
	return nil
}
