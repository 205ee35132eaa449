package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ayusman/handthrottle/internal/app"
	"github.com/ayusman/handthrottle/internal/server"
	"github.com/ayusman/handthrottle/internal/store"
	"github.com/ayusman/handthrottle/internal/tray"
)

func main() {
	cameraID := flag.Int("camera", 0, "camera device ID")
	useModel := flag.Bool("use-model", false, "classify with the trained model instead of rules")
	modelPath := flag.String("model", "", "path to the model file (default ~/.handthrottle/model.json)")
	threshold := flag.Float64("threshold", 0, "confidence threshold (0 uses the stored or default value)")
	minAction := flag.Duration("min-action", 0, "minimum time between action changes (0 uses the stored or default value)")
	accelKey := flag.String("accel-key", "", "key held while accelerating")
	brakeKey := flag.String("brake-key", "", "key held while braking")
	motion := flag.Float64("motion", 0, "percent of changed pixels that counts as motion")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	noTray := flag.Bool("no-tray", false, "run without the system tray (headless)")
	flag.Parse()

	fmt.Println("HandThrottle - Gesture Game Control")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".handthrottle")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "handthrottle.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if *modelPath == "" {
		*modelPath = filepath.Join(dataDir, "model.json")
	}

	cfg := app.Config{
		Store:               st,
		CameraID:            *cameraID,
		UseModel:            *useModel,
		ModelPath:           *modelPath,
		ConfidenceThreshold: *threshold,
		MinActionDuration:   *minAction,
		AccelerateKey:       *accelKey,
		BrakeKey:            *brakeKey,
		MotionThreshold:     *motion,
	}
	applyStoredSettings(st, &cfg)

	a := app.New(cfg)
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start control pipeline: %v", err)
	}

	srv := server.New(server.Config{
		Store:     st,
		App:       a,
		Camera:    a.Camera(),
		ModelPath: *modelPath,
		StaticDir: findWebDir(),
	})
	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if *noTray {
		select {}
	}

	t := tray.New()
	t.OnToggle(func(paused bool) {
		a.SetPaused(paused)
	})
	t.OnSettings(func() {
		exec.Command("open", "http://localhost"+*addr).Start()
	})
	t.OnQuit(func() {
		a.Stop()
	})

	go updateTray(t, a)

	// Blocks until Quit is chosen from the tray menu.
	t.Run()
}

// applyStoredSettings fills config fields the flags left at their zero
// value from the settings table. Explicit flags win over stored values.
func applyStoredSettings(st *store.Store, cfg *app.Config) {
	settings, err := st.Settings().All()
	if err != nil {
		log.Printf("Failed to load stored settings: %v", err)
		return
	}

	if cfg.ConfidenceThreshold == 0 {
		if v, err := strconv.ParseFloat(settings["confidence_threshold"], 64); err == nil {
			cfg.ConfidenceThreshold = v
		}
	}
	if cfg.MinActionDuration == 0 {
		if v, err := time.ParseDuration(settings["min_action_duration"]); err == nil {
			cfg.MinActionDuration = v
		}
	}
	if cfg.AccelerateKey == "" {
		cfg.AccelerateKey = settings["accelerate_key"]
	}
	if cfg.BrakeKey == "" {
		cfg.BrakeKey = settings["brake_key"]
	}
	if cfg.MotionThreshold == 0 {
		if v, err := strconv.ParseFloat(settings["motion_threshold"], 64); err == nil {
			cfg.MotionThreshold = v
		}
	}
}

// updateTray mirrors the pipeline action into the tray menu.
func updateTray(t *tray.Tray, a *app.App) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	last := ""
	for range ticker.C {
		status := a.Status()
		if status.Action != last {
			last = status.Action
			t.SetAction(status.Action)
		}
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.handthrottle/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".handthrottle", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
