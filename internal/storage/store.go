package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/pedaltrainer/internal/pedal"
	"github.com/san-kum/pedaltrainer/internal/trainer"
)

var ErrUnknownRun = errors.New("storage: unknown run")

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

// Store keeps recorded practice runs, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Device    string             `json:"device"`
	Seed      int64              `json:"seed"`
	Tolerance int                `json:"tolerance"`
	HoldTime  int                `json:"hold_time"`
	Duration  float64            `json:"duration"`
	Frames    int                `json:"frames"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Frame is one recorded loop iteration.
type Frame struct {
	At         time.Duration `json:"at"`
	Active     pedal.Axis    `json:"active"`
	Target     float64       `json:"target"`
	Throttle   float64       `json:"throttle"`
	Brake      float64       `json:"brake"`
	InBand     bool          `json:"in_band"`
	Retargeted bool          `json:"retargeted"`
}

// Recording collects frames while a session runs.
type Recording struct {
	frames []Frame
	at     time.Duration
}

func NewRecording() *Recording {
	return &Recording{}
}

// Record appends a frame. elapsed is the time since the previous frame.
func (r *Recording) Record(elapsed time.Duration, snap trainer.Snapshot, res trainer.StepResult) {
	r.at += elapsed
	r.frames = append(r.frames, Frame{
		At:         r.at,
		Active:     snap.Active,
		Target:     snap.Target,
		Throttle:   snap.Throttle,
		Brake:      snap.Brake,
		InBand:     res.InBand,
		Retargeted: res.Retargeted,
	})
}

func (r *Recording) Frames() []Frame        { return r.frames }
func (r *Recording) Duration() time.Duration { return r.at }

// Save writes meta and frames as a new run and returns its id. ID, Frames
// and Duration are filled in from the recording.
func (s *Store) Save(meta RunMetadata, rec *Recording) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = fmt.Sprintf("session_%d", meta.Timestamp.UnixNano())
	meta.Frames = len(rec.frames)
	meta.Duration = rec.at.Seconds()

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"time", "active", "target", "throttle", "brake", "in_band", "retargeted"}); err != nil {
		return "", err
	}
	for _, f := range rec.frames {
		row := []string{
			strconv.FormatFloat(f.At.Seconds(), 'f', 3, 64),
			f.Active.String(),
			strconv.FormatFloat(f.Target, 'f', 6, 64),
			strconv.FormatFloat(f.Throttle, 'f', 6, 64),
			strconv.FormatFloat(f.Brake, 'f', 6, 64),
			strconv.FormatBool(f.InBand),
			strconv.FormatBool(f.Retargeted),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadFrames reads the frame log of a run. Malformed rows are skipped.
func (s *Store) LoadFrames(runID string) ([]Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Frame{}, nil
	}

	frames := make([]Frame, 0, len(records)-1)
	for _, rec := range records[1:] {
		f, ok := parseFrame(rec)
		if !ok {
			continue
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func parseFrame(rec []string) (Frame, bool) {
	if len(rec) != 7 {
		return Frame{}, false
	}
	var f Frame
	at, err := strconv.ParseFloat(rec[0], 64)
	if err != nil {
		return Frame{}, false
	}
	f.At = time.Duration(at * float64(time.Second))
	f.Active = pedal.Brake
	if rec[1] == pedal.Throttle.String() {
		f.Active = pedal.Throttle
	}
	vals := []*float64{&f.Target, &f.Throttle, &f.Brake}
	for i, p := range vals {
		v, err := strconv.ParseFloat(rec[2+i], 64)
		if err != nil {
			return Frame{}, false
		}
		*p = v
	}
	if f.InBand, err = strconv.ParseBool(rec[5]); err != nil {
		return Frame{}, false
	}
	if f.Retargeted, err = strconv.ParseBool(rec[6]); err != nil {
		return Frame{}, false
	}
	return f, true
}

type exportData struct {
	RunMetadata
	Frames []Frame `json:"trace"`
}

// ExportJSON writes a run's metadata and frames to w as indented JSON.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{RunMetadata: *meta, Frames: frames})
}
