package app

// EventType identifies different application events.
type EventType int

const (
	EventImageLoaded     EventType = iota // *image.Background
	EventCleared                          // nil
	EventViewChanged                      // view.View
	EventStrokeCommitted                  // stroke ID
	EventUndo                             // stroke ID
	EventSaved                            // path
	EventColorChanged                     // color.NRGBA
	EventBrushChanged                     // brush size
	EventModified                         // bool
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type. Listeners run on
// the caller's goroutine with the state unlocked.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}
