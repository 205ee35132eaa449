package app

import (
	"log"
	"time"

	"github.com/ayusman/handthrottle/internal/control"
	"github.com/ayusman/handthrottle/internal/detector"
	"github.com/ayusman/handthrottle/internal/gesture"
)

// runPipeline is the control loop: camera frame, motion gate, hand
// detection, classification, confidence gate, debounced key output.
//
// The camera runs at IdleFPS while the scene is static and ActiveFPS
// while motion (or a held action) keeps the pipeline hot. The loop never
// drops to idle mode while a key is held: a perfectly steady hand must
// not freeze the detection that would eventually release it.
//
// The controller's shutdown runs here, after the loop exits, so the stop
// path cannot race the per-frame Apply calls.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	defer a.controller.Stop()

	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			now := time.Now()

			if a.IsPaused() {
				// Keep driving the state machine so held keys release.
				a.step(nil, 0, 0, now)
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				a.step(nil, 0, 0, now)
				continue
			}

			motionDetected, _ := a.motion.Detect(frame)
			holding := a.controller.Current() != control.ActionIdle

			if motionDetected || holding {
				lastMotionTime = now
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode && time.Since(lastMotionTime) > idleTimeout {
				activeMode = false
				a.camera.SetFPS(IdleFPS)
				frameInterval = time.Second / time.Duration(IdleFPS)
				ticker.Reset(frameInterval)
				log.Println("Switched to idle mode")
			}

			if !activeMode {
				frame.Close()
				a.step(nil, 0, 0, now)
				continue
			}

			width := frame.Cols()
			height := frame.Rows()

			hands, err := a.detector.Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				a.step(nil, 0, 0, now)
				continue
			}

			a.step(hands, width, height, now)
		}
	}
}

// step feeds one frame's detection result through classification, the
// confidence gate and the debouncer. Frames with no hand (or with
// metrics the classifier rejects) drive the debouncer with an explicit
// uncertain/unconfident call so keys release when the hand leaves.
func (a *App) step(hands []detector.HandLandmarks, frameWidth, frameHeight int, now time.Time) control.Action {
	label := gesture.LabelUncertain
	confident := false
	confidence := 0.0
	handVisible := false

	if len(hands) > 0 {
		metrics := detector.ExtractMetrics(&hands[0], frameWidth, frameHeight)

		result, err := a.classifier.Classify(metrics)
		if err != nil {
			log.Printf("Skipping frame: %v", err)
		} else {
			handVisible = true
			confidence = result.Confidence
			label, confident = gesture.Smooth(result.Gesture, result.Confidence, a.config.ConfidenceThreshold)
			a.maybeRecordSample(metrics)
		}
	}

	action := a.controller.Apply(label, confident, now)

	a.mu.Lock()
	defer a.mu.Unlock()

	prev := a.lastAction
	a.lastAction = action
	a.handVisible = handVisible
	a.lastGesture = label
	a.lastConfidence = confidence

	a.frames++
	if handVisible {
		a.handFrames++
	}
	if action != prev {
		switch action {
		case control.ActionAccelerate:
			a.accelerations++
		case control.ActionBrake:
			a.brakes++
		}
	}

	a.frameCount++
	if now.Sub(a.fpsWindowStart) >= time.Second {
		a.fps = a.frameCount
		a.frameCount = 0
		a.fpsWindowStart = now
	}

	return action
}

// maybeRecordSample stores the frame's feature vector when a labeling
// session is active.
func (a *App) maybeRecordSample(metrics detector.Metrics) {
	a.mu.RLock()
	label := a.recordLabel
	a.mu.RUnlock()

	if label == gesture.LabelUncertain || a.config.Store == nil {
		return
	}

	if _, err := a.config.Store.Samples().Create(label.String(), gesture.Features(metrics)); err != nil {
		log.Printf("Failed to record sample: %v", err)
	}
}
