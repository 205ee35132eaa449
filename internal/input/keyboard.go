// Package input provides keyboard emulation for holding game keys down.
// The macOS implementation drives System Events via osascript.
package input

import (
	"fmt"
	"os/exec"
	"strings"
)

// Keyboard is the key injection collaborator used by the game controller.
// Press holds a key down until Release is called for the same key.
type Keyboard interface {
	Press(key string) error
	Release(key string) error
}

// keyCodes maps key names to macOS virtual key codes.
var keyCodes = map[string]int{
	"left":   123,
	"right":  124,
	"down":   125,
	"up":     126,
	"space":  49,
	"return": 36,
	"escape": 53,
}

// KnownKey reports whether a key name can be injected.
func KnownKey(key string) bool {
	_, ok := keyCodes[strings.ToLower(key)]
	return ok
}

// AppleScriptKeyboard injects key events through System Events.
type AppleScriptKeyboard struct{}

// NewAppleScriptKeyboard creates the macOS keyboard implementation.
func NewAppleScriptKeyboard() *AppleScriptKeyboard {
	return &AppleScriptKeyboard{}
}

// Press holds the named key down.
func (k *AppleScriptKeyboard) Press(key string) error {
	script, err := keyScript("key down", key)
	if err != nil {
		return err
	}
	return runAppleScript(script)
}

// Release lets the named key up.
func (k *AppleScriptKeyboard) Release(key string) error {
	script, err := keyScript("key up", key)
	if err != nil {
		return err
	}
	return runAppleScript(script)
}

// keyScript builds the System Events script for a key verb.
func keyScript(verb, key string) (string, error) {
	code, ok := keyCodes[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown key %q", key)
	}
	return fmt.Sprintf(`tell application "System Events" to %s (key code %d)`, verb, code), nil
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
