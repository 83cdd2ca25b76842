package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/bondsim/internal/metrics"
	"github.com/san-kum/bondsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	energyFile   = "energy.csv"
)

var energyHeader = []string{"time", "dt", "kinetic", "gravity", "bond", "wall", "object_repulsion", "total", "max_pressure"}

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
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Nodes       int                `json:"nodes"`
	Bonds       int                `json:"bonds"`
	Timestamp   time.Time          `json:"timestamp"`
	Duration    float64            `json:"duration"`
	Settings    sim.Settings       `json:"settings"`
	Frames      int                `json:"frames"`
	Recoveries  int                `json:"recoveries"`
	BrokenBonds int                `json:"broken_bonds"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// RunLog appends energy samples to a run directory. Close rewrites the
// metadata with whatever the caller put into Meta.
type RunLog struct {
	Meta RunMetadata

	dir  string
	file *os.File
	w    *csv.Writer
	rows int
}

// Create makes a new run directory named after the scene and the current
// time and opens its energy log.
func (s *Store) Create(meta RunMetadata) (*RunLog, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Scene, meta.Timestamp.UnixNano())
	}
	dir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.Join(dir, energyFile))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(energyHeader); err != nil {
		f.Close()
		return nil, err
	}

	l := &RunLog{Meta: meta, dir: dir, file: f, w: w}
	if err := l.writeMetadata(); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

func (l *RunLog) Dir() string { return l.dir }
func (l *RunLog) Rows() int   { return l.rows }

func (l *RunLog) Append(t, dt float64, e metrics.EnergyBreakdown, maxPressure float64) error {
	row := []string{
		formatFloat(t),
		strconv.FormatFloat(dt, 'g', -1, 64),
		formatFloat(e.Kinetic),
		formatFloat(e.Gravity),
		formatFloat(e.Bond),
		formatFloat(e.Wall),
		formatFloat(e.ObjectRepulsion),
		formatFloat(e.Total()),
		formatFloat(maxPressure),
	}
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.rows++
	return nil
}

func (l *RunLog) Close() error {
	l.w.Flush()
	werr := l.w.Error()
	cerr := l.file.Close()
	merr := l.writeMetadata()
	return errors.Join(werr, cerr, merr)
}

func (l *RunLog) writeMetadata() error {
	f, err := os.Create(filepath.Join(l.dir, metadataFile))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l.Meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns every readable run, newest first. Directories without valid
// metadata are skipped.
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// Series is the energy log of one run, one entry per row.
type Series struct {
	Times       []float64
	Dts         []float64
	Energies    []metrics.EnergyBreakdown
	MaxPressure []float64
}

func (s Series) Totals() []float64 {
	out := make([]float64, len(s.Energies))
	for i, e := range s.Energies {
		out[i] = e.Total()
	}
	return out
}

// LoadSeries reads a run's energy log. Malformed rows are skipped.
func (s *Store) LoadSeries(runID string) (Series, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, energyFile))
	if err != nil {
		return Series{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return Series{}, err
	}

	var out Series
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) < len(energyHeader) {
			continue
		}
		vals := make([]float64, len(energyHeader))
		ok := true
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(rec[j], 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out.Times = append(out.Times, vals[0])
		out.Dts = append(out.Dts, vals[1])
		out.Energies = append(out.Energies, metrics.EnergyBreakdown{
			Kinetic:         vals[2],
			Gravity:         vals[3],
			Bond:            vals[4],
			Wall:            vals[5],
			ObjectRepulsion: vals[6],
		})
		out.MaxPressure = append(out.MaxPressure, vals[8])
	}
	return out, nil
}
