package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/bondsim/internal/metrics"
	"github.com/san-kum/bondsim/internal/scene"
	"github.com/san-kum/bondsim/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneRoundTrip(t *testing.T) {
	sc, err := scene.Generate("three_squares", 4)
	require.NoError(t, err)
	sc.Nodes[3].Velocity[0] = 1.25
	sc.Nodes[5].CurrentAcceleration[1] = -9.81

	var buf bytes.Buffer
	require.NoError(t, SaveScene(&buf, sc))

	got, err := LoadScene(&buf)
	require.NoError(t, err)
	assert.True(t, got.Equal(sc), "loaded scene differs from saved scene")
}

func TestSceneFile(t *testing.T) {
	sc, err := scene.Generate("two_squares", 3)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "scene.msgpack")
	require.NoError(t, SaveSceneFile(path, sc))

	got, err := LoadSceneFile(path)
	require.NoError(t, err)
	assert.Equal(t, len(sc.Nodes), len(got.Nodes))
	assert.Equal(t, len(sc.Connections), len(got.Connections))
}

func TestLoadSceneRejectsGarbage(t *testing.T) {
	_, err := LoadScene(bytes.NewReader([]byte{0xc1, 0x00, 0x13}))
	assert.ErrorIs(t, err, ErrCorruptScene)
}

func TestLoadSceneRejectsBadBond(t *testing.T) {
	sc := scene.New(0.1, 10)
	sc.Append(scene.BuildRectangle(2, 1, 0.1, 0, 0, 1, 0, 1))
	sc.Connect(0, 1, scene.Bond{EquilibriumDistance: 0.1, PotentialStrength: 1})

	var buf bytes.Buffer
	require.NoError(t, SaveScene(&buf, sc))

	// Drop a node behind the encoder's back so the bond dangles.
	sc.Nodes = sc.Nodes[:1]
	buf.Reset()
	require.NoError(t, SaveScene(&buf, sc))

	_, err := LoadScene(&buf)
	assert.ErrorIs(t, err, ErrCorruptScene)
}

func TestRunLog(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	log, err := st.Create(RunMetadata{
		Scene:    "two_squares",
		Nodes:    200,
		Duration: 1,
		Settings: sim.DefaultSettings(),
	})
	require.NoError(t, err)

	e := metrics.EnergyBreakdown{Kinetic: 1, Gravity: 2, Bond: -3, Wall: 0.5, ObjectRepulsion: 0.25}
	require.NoError(t, log.Append(0.05, 2e-5, e, 12.5))
	require.NoError(t, log.Append(0.10, 2.2e-5, e, 13.5))
	log.Meta.Frames = 1000
	log.Meta.Metrics = map[string]float64{"energy_drift": 0.01}
	require.NoError(t, log.Close())
	assert.Equal(t, 2, log.Rows())

	meta, err := st.Load(log.Meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "two_squares", meta.Scene)
	assert.Equal(t, 1000, meta.Frames)
	assert.InDelta(t, 0.01, meta.Metrics["energy_drift"], 1e-12)
	assert.Equal(t, sim.DefaultSettings().Engine, meta.Settings.Engine)

	series, err := st.LoadSeries(log.Meta.ID)
	require.NoError(t, err)
	require.Len(t, series.Times, 2)
	assert.InDelta(t, 0.10, series.Times[1], 1e-9)
	assert.InDelta(t, 2.2e-5, series.Dts[1], 1e-15)
	assert.InDelta(t, e.Total(), series.Totals()[0], 1e-6)
	assert.InDelta(t, 13.5, series.MaxPressure[1], 1e-9)
}

func TestListNewestFirst(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"old", "new"} {
		l, err := st.Create(RunMetadata{ID: name, Scene: "tower", Timestamp: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
		require.NoError(t, l.Close())
	}
	require.NoError(t, os.Mkdir(filepath.Join(st.baseDir, "junk"), 0755))

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestExportJSON(t *testing.T) {
	s := Series{
		Times:       []float64{0.1},
		Dts:         []float64{2e-5},
		Energies:    []metrics.EnergyBreakdown{{Kinetic: 1, Gravity: 4}},
		MaxPressure: []float64{3},
	}
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, RunMetadata{ID: "x"}, s))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "x", data.Run.ID)
	assert.Equal(t, []float64{4}, data.Potential)
	assert.Equal(t, []float64{5}, data.Total)
}
