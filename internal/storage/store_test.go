package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/pedaltrainer/internal/pedal"
	"github.com/san-kum/pedaltrainer/internal/trainer"
)

func sampleRecording() *Recording {
	rec := NewRecording()
	rec.Record(100*time.Millisecond, trainer.Snapshot{Active: pedal.Brake, Target: 0.4, Brake: 0.41, Throttle: 0},
		trainer.StepResult{InBand: true})
	rec.Record(100*time.Millisecond, trainer.Snapshot{Active: pedal.Throttle, Target: 0.7, Throttle: 0.2},
		trainer.StepResult{Retargeted: true})
	return rec
}

func TestRecording(t *testing.T) {
	rec := sampleRecording()
	if rec.Duration() != 200*time.Millisecond {
		t.Errorf("expected 200ms, got %v", rec.Duration())
	}
	frames := rec.Frames()
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[1].At != 200*time.Millisecond {
		t.Errorf("expected second frame at 200ms, got %v", frames[1].At)
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Device:    "wheel",
		Seed:      42,
		Tolerance: 5,
		HoldTime:  100,
		Metrics:   map[string]float64{"targets_hit": 3},
	}
	runID, err := st.Save(meta, sampleRecording())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Seed != 42 {
		t.Errorf("expected seed 42, got %d", got.Seed)
	}
	if got.Frames != 2 {
		t.Errorf("expected 2 frames, got %d", got.Frames)
	}
	if got.Duration != 0.2 {
		t.Errorf("expected duration 0.2, got %f", got.Duration)
	}
	if got.Metrics["targets_hit"] != 3 {
		t.Errorf("expected 3 hits, got %f", got.Metrics["targets_hit"])
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Active != pedal.Brake || !frames[0].InBand {
		t.Errorf("unexpected first frame %+v", frames[0])
	}
	if frames[1].Active != pedal.Throttle || !frames[1].Retargeted {
		t.Errorf("unexpected second frame %+v", frames[1])
	}
	if frames[1].Target != 0.7 {
		t.Errorf("expected target 0.7, got %f", frames[1].Target)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	base := time.Unix(1700000000, 0)
	for i := 2; i >= 0; i-- {
		meta := RunMetadata{Timestamp: base.Add(time.Duration(i) * time.Minute), Seed: int64(i)}
		if _, err := st.Save(meta, NewRecording()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, r := range runs {
		if r.Seed != int64(i) {
			t.Errorf("expected runs oldest first, got seed %d at %d", r.Seed, i)
		}
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runID, err := st.Save(RunMetadata{}, NewRecording())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, framesFile} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStoreUnknownRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("missing"); !errors.Is(err, ErrUnknownRun) {
		t.Errorf("expected ErrUnknownRun, got %v", err)
	}
	if _, err := st.LoadFrames("missing"); !errors.Is(err, ErrUnknownRun) {
		t.Errorf("expected ErrUnknownRun, got %v", err)
	}
}

func TestParseFrameRejectsMalformed(t *testing.T) {
	rows := [][]string{
		{"0.1", "brake"},
		{"x", "brake", "0.5", "0", "0.5", "true", "false"},
		{"0.1", "brake", "0.5", "0", "0.5", "maybe", "false"},
	}
	for _, row := range rows {
		if _, ok := parseFrame(row); ok {
			t.Errorf("expected %v to be rejected", row)
		}
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Device: "wheel"}, sampleRecording())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var out struct {
		ID     string  `json:"id"`
		Device string  `json:"device"`
		Trace  []Frame `json:"trace"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if out.ID != runID || out.Device != "wheel" {
		t.Errorf("unexpected metadata %+v", out)
	}
	if len(out.Trace) != 2 {
		t.Errorf("expected 2 trace frames, got %d", len(out.Trace))
	}
}
