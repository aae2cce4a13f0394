package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zeitig/internal/backend"
	"zeitig/internal/config"
	"zeitig/internal/database"
	repoerrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/infrastructure/logging"
	"zeitig/internal/snapshot"
	"zeitig/internal/testutils"
	"zeitig/internal/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	db := database.DefaultConfig()
	db.Path = filepath.Join(dir, "zeitig.db")
	return &config.Config{
		Database: *db,
		Tracker:  config.TrackerConfig{Tick: time.Second, MinSession: 30 * time.Second},
		Autosave: config.AutosaveConfig{Enabled: true, Delay: time.Hour, Path: filepath.Join(dir, "snapshot.toml")},
		Log:      config.LogConfig{Level: "info"},
		DataDir:  dir,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := NewApp(context.Background(), cfg, logging.NopLogger{})
	require.NoError(t, err)
	return a
}

func TestApp_FreshDatabase(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg)
	defer a.Shutdown(context.Background())

	st, err := a.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, database.SchemaVersion, st.SchemaVersion)
	assert.Equal(t, cfg.Database.Path, st.DatabasePath)
	assert.Zero(t, st.Actions)
	assert.Zero(t, st.Sessions)
}

func TestApp_SessionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	a := newTestApp(t, cfg)
	clock := testutils.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	a.SetClock(clock)

	sink := backend.NewChannelSink(16)
	a.Start(ctx, sink)

	ev, err := a.Do(ctx, sink, backend.AddAction{Name: "Read"})
	require.NoError(t, err)
	action := ev.(backend.ActionAdded).Action
	ev, err = a.Do(ctx, sink, backend.AddSubject{Name: "Go"})
	require.NoError(t, err)
	subject := ev.(backend.SubjectAdded).Subject

	tracker := a.Tracker()
	require.NoError(t, tracker.SelectAction(&action))
	require.NoError(t, tracker.SelectSubject(&subject))
	require.NoError(t, tracker.Start())
	for range 31 {
		clock.Advance(time.Second)
		tracker.Tick()
	}

	// shutdown commits the running session before the store closes
	require.NoError(t, a.Shutdown(ctx))

	reopened := newTestApp(t, cfg)
	defer reopened.Shutdown(ctx)

	st, err := reopened.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Actions)
	assert.Equal(t, 1, st.Sessions)
	assert.True(t, st.Total.Equal(types.Seconds(31)))

	snap, err := snapshot.ReadFile(cfg.Autosave.Path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Read"}, snap.Actions)
	require.Len(t, snap.History, 1)
}

func TestApp_DoReportsCommandFailure(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, testConfig(t))
	sink := backend.NewChannelSink(4)
	a.Start(ctx, sink)
	defer a.Shutdown(ctx)

	_, err := a.Do(ctx, sink, backend.AddAction{Name: " "})
	require.Error(t, err)
	assert.True(t, repoerrors.IsValidation(err))
	assert.NotEmpty(t, a.Tracker().LastError())
}

func TestApp_ImportAndExport(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	started := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	legacy := &snapshot.Snapshot{
		Actions:   []string{"Read", "Write"},
		Subjects:  []string{"Go"},
		TimeTable: []snapshot.TimeRecord{{Action: "Read", Subject: "Go", Seconds: 3600}},
		History:   []snapshot.Record{{Action: "Read", Subject: "Go", Started: started, Ended: started.Add(time.Hour)}},
	}
	legacyPath := filepath.Join(t.TempDir(), "legacy.yaml")
	require.NoError(t, snapshot.WriteFile(legacyPath, legacy))

	a := newTestApp(t, cfg)
	defer a.Shutdown(ctx)
	require.NoError(t, a.Import(ctx, legacyPath))

	st, err := a.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Actions)
	assert.Equal(t, 1, st.Sessions)
	assert.True(t, st.Total.Equal(types.Seconds(3600)))

	err = a.Import(ctx, legacyPath)
	assert.True(t, repoerrors.IsValidation(err), "a second import would clash with existing ids")

	exportPath := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, a.Export(exportPath))
	exported, err := snapshot.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Equal(t, legacy.Actions, exported.Actions)
	assert.Equal(t, legacy.TimeTable, exported.TimeTable)
}

func TestApp_ResolveTopic(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	legacyPath := filepath.Join(t.TempDir(), "legacy.toml")
	require.NoError(t, snapshot.WriteFile(legacyPath, &snapshot.Snapshot{Actions: []string{"Read"}, Subjects: []string{"Go"}}))

	a := newTestApp(t, cfg)
	defer a.Shutdown(ctx)
	require.NoError(t, a.Import(ctx, legacyPath))

	topic, err := a.ResolveTopic("Read", "Go")
	require.NoError(t, err)
	assert.Equal(t, "Read / Go", topic.String())

	_, err = a.ResolveTopic("Read", "Rust")
	assert.True(t, repoerrors.IsNotFound(err))
}

func TestApp_DanglingHistoryFailsStartup(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Database.ForeignKeys = false

	a := newTestApp(t, cfg)
	_, err := a.dbService.DB().ExecContext(ctx,
		`INSERT INTO History (started, ended, action, subject) VALUES ('2024-01-01T09:00:00Z', '2024-01-01T10:00:00Z', 1, 1)`)
	require.NoError(t, err)
	require.NoError(t, a.Shutdown(ctx))

	_, err = NewApp(ctx, cfg, logging.NopLogger{})
	require.Error(t, err)
	assert.True(t, repoerrors.IsReferentialIntegrity(err))
}

func TestRuntime_RunUntilCancelled(t *testing.T) {
	cfg := testConfig(t)
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	rt := NewRuntime(ctx, a)

	result := make(chan error, 1)
	go func() { result <- rt.Run(ctx) }()
	cancel()

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runtime did not shut down")
	}

	select {
	case <-a.Done():
	default:
		t.Fatal("worker still running")
	}
	_, err := os.Stat(cfg.Autosave.Path)
	assert.NoError(t, err, "final snapshot written on shutdown")
}
