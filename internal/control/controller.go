// Package control turns the gated per-frame gesture stream into held
// key presses, debouncing transitions so keys do not flicker.
package control

import (
	"log"
	"time"

	"github.com/ayusman/handthrottle/internal/gesture"
	"github.com/ayusman/handthrottle/internal/input"
)

// Action is the discrete control state driven by gestures.
type Action int

const (
	// ActionIdle holds no key.
	ActionIdle Action = iota
	// ActionAccelerate holds the accelerate key.
	ActionAccelerate
	// ActionBrake holds the brake key.
	ActionBrake
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionAccelerate:
		return "accelerate"
	case ActionBrake:
		return "brake"
	default:
		return "idle"
	}
}

// Defaults for Config fields left zero.
const (
	DefaultMinActionDuration = 50 * time.Millisecond
	DefaultAccelerateKey     = "right"
	DefaultBrakeKey          = "left"
)

// Config holds constructor-time controller options.
type Config struct {
	// MinActionDuration is the minimum dwell time between accepted
	// transition evaluations. Calls arriving sooner keep the current
	// action held.
	MinActionDuration time.Duration

	// AccelerateKey and BrakeKey are the key names held for each action.
	AccelerateKey string
	BrakeKey      string
}

// Controller owns the action state machine. It is driven from a single
// control thread; it provides no internal synchronization.
type Controller struct {
	config   Config
	keyboard input.Keyboard

	current        Action
	lastActionTime time.Time
	pressed        map[string]struct{}
}

// New creates a Controller writing key events to kb.
func New(kb input.Keyboard, config Config) *Controller {
	if config.MinActionDuration <= 0 {
		config.MinActionDuration = DefaultMinActionDuration
	}
	if config.AccelerateKey == "" {
		config.AccelerateKey = DefaultAccelerateKey
	}
	if config.BrakeKey == "" {
		config.BrakeKey = DefaultBrakeKey
	}

	return &Controller{
		config:   config,
		keyboard: kb,
		current:  ActionIdle,
		pressed:  make(map[string]struct{}),
	}
}

// Apply feeds one gated classification into the state machine and returns
// the action now being held.
//
// A transition is only evaluated once MinActionDuration has elapsed since
// the last accepted evaluation; earlier calls are no-ops so the held key
// cannot flicker. The dwell timer resets on every accepted evaluation,
// whether or not the state changed, so the machine never re-evaluates
// faster than the configured interval even while holding steady.
func (c *Controller) Apply(label gesture.Label, confident bool, now time.Time) Action {
	desired := desiredAction(label, confident)

	if now.Sub(c.lastActionTime) < c.config.MinActionDuration {
		return c.current
	}

	if desired != c.current {
		c.releaseAll()
		c.current = desired

		switch desired {
		case ActionAccelerate:
			c.press(c.config.AccelerateKey)
		case ActionBrake:
			c.press(c.config.BrakeKey)
		}
	}

	c.lastActionTime = now
	return c.current
}

// Current returns the action currently being held.
func (c *Controller) Current() Action {
	return c.current
}

// Stop releases everything and resets the machine to idle. It is safe to
// call repeatedly; every call physically releases both mapped keys.
func (c *Controller) Stop() {
	c.releaseAll()
	c.current = ActionIdle
}

// desiredAction maps a gated gesture to the action it requests.
// Anything not confidently open or closed requests idle.
func desiredAction(label gesture.Label, confident bool) Action {
	if !confident {
		return ActionIdle
	}
	switch label {
	case gesture.LabelOpen:
		return ActionAccelerate
	case gesture.LabelClosed:
		return ActionBrake
	default:
		return ActionIdle
	}
}

// press holds a key down. Injection failures are logged and the key is
// still booked as pressed: assuming the key toggled keeps the next
// releaseAll honest, and the next frame retries anyway.
func (c *Controller) press(key string) {
	if err := c.keyboard.Press(key); err != nil {
		log.Printf("press %q failed: %v", key, err)
	}
	c.pressed[key] = struct{}{}
}

// releaseAll releases every booked key, then both mapped keys regardless
// of bookkeeping. A stuck key is a worse failure than a redundant
// release call.
func (c *Controller) releaseAll() {
	for key := range c.pressed {
		if err := c.keyboard.Release(key); err != nil {
			log.Printf("release %q failed: %v", key, err)
		}
		delete(c.pressed, key)
	}

	c.keyboard.Release(c.config.AccelerateKey)
	c.keyboard.Release(c.config.BrakeKey)
}
