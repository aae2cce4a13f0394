package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zeitig/internal/config"
	repoerrors "zeitig/internal/infrastructure/errors"
	"zeitig/internal/snapshot"
)

func executeCLI(t *testing.T, dataDir string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--data-dir", dataDir, "--log-level", "error"}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSnapshotFixture(t *testing.T) string {
	t.Helper()
	started := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "legacy.yaml")
	require.NoError(t, snapshot.WriteFile(path, &snapshot.Snapshot{
		Actions:   []string{"Read"},
		Subjects:  []string{"Go", "Rust"},
		TimeTable: []snapshot.TimeRecord{{Action: "Read", Subject: "Go", Seconds: 5400}},
		History: []snapshot.Record{
			{Action: "Read", Subject: "Go", Started: started, Ended: started.Add(90 * time.Minute)},
		},
	}))
	return path
}

func TestActionAddThenList(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "action", "add", "Write")
	require.NoError(t, err)
	assert.Equal(t, "1\tWrite\n", stdout)

	_, _, err = executeCLI(t, home, "action", "add", "Deep", "reading")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "action", "list")
	require.NoError(t, err)
	assert.Equal(t, "2\tDeep reading\n1\tWrite\n", stdout)

	stdout, _, err = executeCLI(t, home, "subject", "list")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestSubjectAddRejectsBlankName(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "subject", "add", "  ")
	require.Error(t, err)
	assert.True(t, repoerrors.IsValidation(err))
}

func TestAddRequiresName(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "action", "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestImportStatusAndExport(t *testing.T) {
	home := t.TempDir()
	legacy := writeSnapshotFixture(t)

	stdout, _, err := executeCLI(t, home, "import", legacy)
	require.NoError(t, err)
	assert.Equal(t, "imported 1 actions, 2 subjects, 1 sessions\n", stdout)

	stdout, _, err = executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "database: "+filepath.Join(home, "zeitig.db"))
	assert.Contains(t, stdout, "schema: 1")
	assert.Contains(t, stdout, "sessions: 1")
	assert.Contains(t, stdout, "total: 1h 30m 0s")

	_, _, err = executeCLI(t, home, "import", legacy)
	assert.True(t, repoerrors.IsValidation(err))

	exported := filepath.Join(t.TempDir(), "out.json")
	_, _, err = executeCLI(t, home, "export", exported)
	require.NoError(t, err)

	snap, err := snapshot.ReadFile(exported)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, snap.Subjects)
	require.Len(t, snap.History, 1)
}

func TestInsights(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "insights")
	require.NoError(t, err)
	assert.Equal(t, "no sessions recorded\n", stdout)

	_, _, err = executeCLI(t, home, "import", writeSnapshotFixture(t))
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "insights", "--utc")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 - 2024-01-07\t1h 30m 0s\n  Read / Go\t1h 30m 0s\n", stdout)
}

func TestTrackUnknownTopic(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "action", "add", "Read")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "track", "Read", "Go")
	require.Error(t, err)
	assert.True(t, repoerrors.IsNotFound(err))
}

func TestNewLoggerUsesFileWhenTerminalIsOwned(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Log: config.LogConfig{Level: "info"}, DataDir: dir}

	var stderr bytes.Buffer
	logger, closer, err := newLogger(cfg, &stderr, true)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, closer.Close())

	assert.Empty(t, stderr.String())
	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)

	logger, _, err = newLogger(cfg, &stderr, false)
	require.NoError(t, err)
	logger.Info("to stderr")
	assert.Contains(t, stderr.String(), "to stderr")
}
