package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSettings(t *testing.T) {
	st := newTestStore(t)
	settings := st.Settings()

	if _, err := settings.Get("confidence_threshold"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing key, got %v", err)
	}

	if err := settings.Set("confidence_threshold", "0.6"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	value, err := settings.Get("confidence_threshold")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value != "0.6" {
		t.Errorf("expected 0.6, got %q", value)
	}

	// Setting again replaces the value.
	if err := settings.Set("confidence_threshold", "0.75"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	value, _ = settings.Get("confidence_threshold")
	if value != "0.75" {
		t.Errorf("expected 0.75 after overwrite, got %q", value)
	}

	all, err := settings.All()
	if err != nil {
		t.Fatalf("all failed: %v", err)
	}
	if len(all) != 1 || all["confidence_threshold"] != "0.75" {
		t.Errorf("unexpected settings map: %v", all)
	}
}

func TestSessions(t *testing.T) {
	st := newTestStore(t)
	sessions := st.Sessions()

	id, err := sessions.Create()
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	session, err := sessions.GetByID(id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if session.EndedAt != nil {
		t.Error("new session should not have an end time")
	}

	if err := sessions.Finish(id, 1200, 900, 14, 9); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	session, err = sessions.GetByID(id)
	if err != nil {
		t.Fatalf("get after finish failed: %v", err)
	}
	if session.EndedAt == nil {
		t.Error("finished session should have an end time")
	}
	if session.Frames != 1200 || session.HandFrames != 900 {
		t.Errorf("unexpected frame counters: %d/%d", session.Frames, session.HandFrames)
	}
	if session.Accelerations != 14 || session.Brakes != 9 {
		t.Errorf("unexpected action counters: %d/%d", session.Accelerations, session.Brakes)
	}

	if err := sessions.Finish("no-such-id", 0, 0, 0, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown session, got %v", err)
	}

	list, err := sessions.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != id {
		t.Errorf("unexpected session list: %v", list)
	}
}

func TestSamples(t *testing.T) {
	st := newTestStore(t)
	samples := st.Samples()

	features := []float64{0.5, 0.01, 0.8, 0.4, 0.55, 0.6, 0.5, 0.45}
	if _, err := samples.Create("open", features); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := samples.Create("closed", features); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// The label CHECK constraint rejects anything but open/closed.
	if _, err := samples.Create("sideways", features); err == nil {
		t.Error("expected constraint error for invalid label")
	}

	list, err := samples.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(list))
	}
	if len(list[0].Features) != len(features) {
		t.Errorf("features did not round-trip: got %d values", len(list[0].Features))
	}
	for i, f := range list[0].Features {
		if f != features[i] {
			t.Errorf("feature %d changed in round trip: %f vs %f", i, f, features[i])
		}
	}

	counts, err := samples.CountByLabel()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counts["open"] != 1 || counts["closed"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}

	if err := samples.DeleteAll(); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	list, _ = samples.List()
	if len(list) != 0 {
		t.Errorf("expected empty sample list after delete, got %d", len(list))
	}
}
