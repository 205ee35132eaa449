package capture

import (
	"errors"
	"testing"
)

func TestMockCamera_ReadBeforeOpen(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
}

func TestMockCamera_OpenClose(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if cam.IsOpen() {
		t.Error("camera should start closed")
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !cam.IsOpen() {
		t.Error("camera should be open")
	}

	// No frames configured: reading is an error but not a panic.
	if _, err := cam.ReadFrame(); err == nil {
		t.Error("expected error reading from empty frame sequence")
	}

	if err := cam.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("camera should be closed")
	}
}

func TestMockCamera_FPS(t *testing.T) {
	cam := NewMockCamera(nil, false)

	cam.SetFPS(5)
	if cam.FPS() != 5 {
		t.Errorf("expected fps 5, got %d", cam.FPS())
	}

	// Non-positive rates are ignored.
	cam.SetFPS(0)
	if cam.FPS() != 5 {
		t.Errorf("expected fps to stay 5, got %d", cam.FPS())
	}
}
