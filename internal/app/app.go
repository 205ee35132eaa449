// Package app wires the capture, detection, classification and control
// components into the gesture-driven game control pipeline.
package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/handthrottle/internal/capture"
	"github.com/ayusman/handthrottle/internal/control"
	"github.com/ayusman/handthrottle/internal/detector"
	"github.com/ayusman/handthrottle/internal/gesture"
	"github.com/ayusman/handthrottle/internal/input"
	"github.com/ayusman/handthrottle/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while the scene is static.
	IdleFPS = 5
	// ActiveFPS is the frame rate while a hand is being tracked.
	ActiveFPS = 15
	// idleTimeout is how long the scene must stay static before the
	// pipeline drops back to the idle rate.
	idleTimeout = 2 * time.Second
)

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	CameraID int

	UseModel  bool
	ModelPath string

	ConfidenceThreshold float64
	MinActionDuration   time.Duration
	AccelerateKey       string
	BrakeKey            string

	// MotionThreshold is the percentage of changed pixels that counts
	// as motion. Zero selects the default of 1%.
	MotionThreshold float64

	// Camera, Detector and Keyboard override the default collaborators.
	// Tests use these; production leaves them nil.
	Camera   capture.Camera
	Detector detector.Detector
	Keyboard input.Keyboard
}

// Status is a snapshot of the pipeline for the UI and telemetry surfaces.
type Status struct {
	Running     bool    `json:"running"`
	Paused      bool    `json:"paused"`
	FPS         int     `json:"fps"`
	HandVisible bool    `json:"hand_visible"`
	Gesture     string  `json:"gesture"`
	Confidence  float64 `json:"confidence"`
	Action      string  `json:"action"`
}

// App is the main application that turns hand gestures into held keys.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	classifier *gesture.Classifier
	controller *control.Controller

	mu          sync.RWMutex
	paused      bool
	recordLabel gesture.Label // LabelUncertain means not recording
	stopCh      chan struct{}
	doneCh      chan struct{}

	// Status fields, guarded by mu.
	fps            int
	frameCount     int
	fpsWindowStart time.Time
	handVisible    bool
	lastGesture    gesture.Label
	lastConfidence float64
	lastAction     control.Action

	// Session telemetry, guarded by mu.
	sessionID     string
	frames        int64
	handFrames    int64
	accelerations int64
	brakes        int64
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.ConfidenceThreshold <= 0 {
		config.ConfidenceThreshold = gesture.DefaultConfidenceThreshold
	}
	if config.MotionThreshold <= 0 {
		config.MotionThreshold = 1.0
	}

	a := &App{
		config:      config,
		motion:      capture.NewMotionDetector(config.MotionThreshold),
		classifier:  gesture.New(gesture.Config{UseModel: config.UseModel, ModelPath: config.ModelPath}),
		recordLabel: gesture.LabelUncertain,
		lastGesture: gesture.LabelUncertain,
	}

	a.camera = config.Camera
	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraID)
	}

	keyboard := config.Keyboard
	if keyboard == nil {
		keyboard = input.NewAppleScriptKeyboard()
	}
	a.controller = control.New(keyboard, control.Config{
		MinActionDuration: config.MinActionDuration,
		AccelerateKey:     config.AccelerateKey,
		BrakeKey:          config.BrakeKey,
	})

	a.detector = config.Detector
	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	return a
}

// Start opens the camera and begins the control pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(IdleFPS)

	if a.config.Store != nil {
		id, err := a.config.Store.Sessions().Create()
		if err != nil {
			log.Printf("Failed to create session record: %v", err)
		} else {
			a.sessionID = id
		}
	}
	a.frames = 0
	a.handFrames = 0
	a.accelerations = 0
	a.brakes = 0
	a.fpsWindowStart = time.Now()

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Control pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources. The controller's
// shutdown runs inside the pipeline goroutine before this returns, so no
// key is left physically held.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh = nil
	a.doneCh = nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.finishSession()
	log.Println("Control pipeline stopped")
}

// finishSession writes the final telemetry counters.
func (a *App) finishSession() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.config.Store == nil || a.sessionID == "" {
		return
	}
	err := a.config.Store.Sessions().Finish(a.sessionID, a.frames, a.handFrames, a.accelerations, a.brakes)
	if err != nil {
		log.Printf("Failed to finish session record: %v", err)
	}
	a.sessionID = ""
}

// SetPaused pauses or resumes gesture control. While paused the
// controller is still driven with idle frames so keys release.
func (a *App) SetPaused(paused bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.paused = paused
}

// IsPaused reports whether gesture control is paused.
func (a *App) IsPaused() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.paused
}

// StartRecording begins recording labeled training samples from live
// frames. label must be "open" or "closed".
func (a *App) StartRecording(label string) error {
	var l gesture.Label
	switch label {
	case "open":
		l = gesture.LabelOpen
	case "closed":
		l = gesture.LabelClosed
	default:
		return fmt.Errorf("invalid sample label %q", label)
	}

	if a.config.Store == nil {
		return fmt.Errorf("no store configured for sample recording")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.recordLabel = l
	return nil
}

// StopRecording stops sample recording.
func (a *App) StopRecording() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recordLabel = gesture.LabelUncertain
}

// Status returns a snapshot of the pipeline state.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return Status{
		Running:     a.stopCh != nil,
		Paused:      a.paused,
		FPS:         a.fps,
		HandVisible: a.handVisible,
		Gesture:     a.lastGesture.String(),
		Confidence:  a.lastConfidence,
		Action:      a.lastAction.String(),
	}
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}
