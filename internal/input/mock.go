package input

import "sync"

// Event is one recorded key injection call.
type Event struct {
	Kind string // "press" or "release"
	Key  string
}

// MockKeyboard records key events for tests. It tracks which keys are
// logically held so tests can assert on the physical key state.
type MockKeyboard struct {
	mu     sync.Mutex
	events []Event
	held   map[string]bool
	err    error
}

// NewMockKeyboard creates a new MockKeyboard.
func NewMockKeyboard() *MockKeyboard {
	return &MockKeyboard{held: make(map[string]bool)}
}

// SetError makes all subsequent calls return err. Events are still
// recorded so tests can observe what a failing keyboard was asked to do.
func (k *MockKeyboard) SetError(err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.err = err
}

// Press records a press and marks the key held.
func (k *MockKeyboard) Press(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.events = append(k.events, Event{Kind: "press", Key: key})
	if k.err != nil {
		return k.err
	}
	k.held[key] = true
	return nil
}

// Release records a release and marks the key up.
func (k *MockKeyboard) Release(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.events = append(k.events, Event{Kind: "release", Key: key})
	if k.err != nil {
		return k.err
	}
	delete(k.held, key)
	return nil
}

// Events returns a copy of all recorded events.
func (k *MockKeyboard) Events() []Event {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]Event, len(k.events))
	copy(out, k.events)
	return out
}

// PressCount returns how many times the key was pressed.
func (k *MockKeyboard) PressCount(key string) int {
	return k.count("press", key)
}

// ReleaseCount returns how many times the key was released.
func (k *MockKeyboard) ReleaseCount(key string) int {
	return k.count("release", key)
}

func (k *MockKeyboard) count(kind, key string) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for _, e := range k.events {
		if e.Kind == kind && e.Key == key {
			n++
		}
	}
	return n
}

// Held reports whether the key is currently held down.
func (k *MockKeyboard) Held(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.held[key]
}

// HeldCount returns how many keys are currently held down.
func (k *MockKeyboard) HeldCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.held)
}
