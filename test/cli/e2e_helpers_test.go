package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bulwarkhq/bulwark/cli"
	"github.com/bulwarkhq/bulwark/core/check"
	"github.com/bulwarkhq/bulwark/journal"
)

// testEnv wires a temp directory, journal path, and config file for one
// end-to-end test. Every command runs in-process against this environment.
type testEnv struct {
	t           *testing.T
	tmpDir      string
	journalPath string
	configPath  string
}

// newTestEnv creates a test environment with the default test config.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, "")
}

// newTestEnvWithConfig creates a test environment. When configYAML is
// empty a minimal config pointing the journal at the temp directory is
// written; otherwise configYAML is written verbatim.
func newTestEnvWithConfig(t *testing.T, configYAML string) *testEnv {
	t.Helper()

	tmpDir := t.TempDir()
	env := &testEnv{
		t:           t,
		tmpDir:      tmpDir,
		journalPath: filepath.Join(tmpDir, "journal.db"),
		configPath:  filepath.Join(tmpDir, "config.yml"),
	}

	if configYAML == "" {
		configYAML = fmt.Sprintf(`journal:
  path: %s
  retention_days: 90
display:
  colors: never
`, env.journalPath)
	}
	require.NoError(t, os.WriteFile(env.configPath, []byte(configYAML), 0600))

	return env
}

// writeConfig replaces the environment's config file.
func (env *testEnv) writeConfig(configYAML string) {
	env.t.Helper()
	require.NoError(env.t, os.WriteFile(env.configPath, []byte(configYAML), 0600))
}

// run executes a bulwark command in-process and captures its output.
func (env *testEnv) run(args ...string) (stdout, stderr string, err error) {
	return env.runWithStdin(nil, args...)
}

// runWithStdin executes a command with the given reader wired to stdin.
func (env *testEnv) runWithStdin(stdin io.Reader, args ...string) (stdout, stderr string, err error) {
	env.t.Helper()

	rootCmd := cli.NewRootCmd()

	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	if stdin != nil {
		rootCmd.SetIn(stdin)
	}

	fullArgs := append([]string{"--config", env.configPath, "--no-color"}, args...)
	rootCmd.SetArgs(fullArgs)

	err = rootCmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), err
}

// runHook drives the hidden _hook command with a JSON payload on stdin.
func (env *testEnv) runHook(phase string, payload []byte) (stdout, stderr string, err error) {
	env.t.Helper()
	return env.runWithStdin(bytes.NewReader(payload), "_hook", phase)
}

// openJournal opens the environment's journal store for direct inspection.
func (env *testEnv) openJournal() (*journal.SQLiteStore, func()) {
	env.t.Helper()

	store, err := journal.NewSQLiteStore(env.journalPath)
	require.NoError(env.t, err)
	return store, func() {
		require.NoError(env.t, store.Close())
	}
}

// seedJournal populates the journal before the command under test runs.
func (env *testEnv) seedJournal(fn func(ctx context.Context, store journal.Store)) {
	env.t.Helper()

	store, closeStore := env.openJournal()
	defer closeStore()
	fn(context.Background(), store)
}

// hookPayload encodes a mutation context the way the host serializes it.
func hookPayload(t *testing.T, ec check.Context) []byte {
	t.Helper()

	data, err := json.Marshal(ec)
	require.NoError(t, err)
	return data
}

// makeRecord builds a journal record with sensible defaults, letting each
// test override just the fields it cares about.
func makeRecord(mutators ...func(*journal.Record)) *journal.Record {
	rec := &journal.Record{
		ID:              uuid.New(),
		Timestamp:       time.Now().UTC(),
		Phase:           "pre",
		ToolName:        "Write",
		Path:            "/tmp/project/main.go",
		Verdict:         "allow",
		Fallback:        "none",
		Elapsed:         12 * time.Millisecond,
		ChecksEvaluated: 7,
	}
	for _, m := range mutators {
		m(rec)
	}
	return rec
}

// seedNDecisions seeds n allow records with distinct paths, oldest first.
func seedNDecisions(n int) func(env *testEnv) {
	return func(env *testEnv) {
		env.seedJournal(func(ctx context.Context, store journal.Store) {
			for i := 0; i < n; i++ {
				i := i
				rec := makeRecord(func(r *journal.Record) {
					r.Timestamp = time.Now().UTC().Add(-time.Duration(n-i) * time.Minute)
					r.Path = fmt.Sprintf("/tmp/project/file%d.go", i)
				})
				require.NoError(env.t, store.Save(ctx, rec))
			}
		})
	}
}

// seedMixedDecisions seeds two allows and two blocks across both phases.
func seedMixedDecisions(env *testEnv) {
	env.seedJournal(func(ctx context.Context, store journal.Store) {
		records := []*journal.Record{
			makeRecord(func(r *journal.Record) {
				r.Timestamp = time.Now().UTC().Add(-4 * time.Minute)
				r.Path = "/tmp/project/server.go"
			}),
			makeRecord(func(r *journal.Record) {
				r.Timestamp = time.Now().UTC().Add(-3 * time.Minute)
				r.Path = "/tmp/project/main_v2.go"
				r.Verdict = "block"
				r.Triggering = "no-versioned-files"
				r.Message = `versioned filename "main_v2.go"; edit "main.go" instead of writing a numbered copy`
			}),
			makeRecord(func(r *journal.Record) {
				r.Timestamp = time.Now().UTC().Add(-2 * time.Minute)
				r.Phase = "post"
				r.ToolName = "Edit"
				r.Path = "/tmp/project/README.md"
			}),
			makeRecord(func(r *journal.Record) {
				r.Timestamp = time.Now().UTC().Add(-time.Minute)
				r.Path = "/tmp/project/config.py"
				r.Verdict = "block"
				r.Triggering = "secret-material"
				r.Message = `content for "config.py" matches secret pattern "password"`
			}),
		}
		for _, rec := range records {
			require.NoError(env.t, store.Save(ctx, rec))
		}
	})
}

// seedOldDecisions seeds n records older than any sane retention window.
func seedOldDecisions(n int) func(env *testEnv) {
	return func(env *testEnv) {
		env.seedJournal(func(ctx context.Context, store journal.Store) {
			for i := 0; i < n; i++ {
				i := i
				rec := makeRecord(func(r *journal.Record) {
					r.Timestamp = time.Now().UTC().AddDate(0, 0, -(100 + i))
					r.Path = fmt.Sprintf("/tmp/project/old%d.go", i)
				})
				require.NoError(env.t, store.Save(ctx, rec))
			}
		})
	}
}

// exitCode extracts the process exit code carried by a command error.
func exitCode(t *testing.T, err error) int {
	t.Helper()

	var coder cli.ExitCoder
	require.ErrorAs(t, err, &coder)
	return coder.ExitCode()
}

// assertValidJSONL asserts every non-empty output line is a JSON object.
func assertValidJSONL(t *testing.T, stdout string) {
	t.Helper()

	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		if line == "" {
			continue
		}
		var obj map[string]interface{}
		assert.NoError(t, json.Unmarshal([]byte(line), &obj), "line: %s", line)
	}
}
