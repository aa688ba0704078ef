package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validData   = "chr1\t10\t20\tgeneA\t+\nchr2\t100\t120\tgeneB\t-\n"
	invalidData = "chr1\t10\t20\tgeneA\t+\nchr23\t5\t1\tbad feat\tx\n"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out, errOut bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_NoFilePrintsDescription(t *testing.T) {
	r := runCLI(t, "")
	assert.Equal(t, ExitSuccess, r.code)
	assert.Contains(t, r.stdout, "Requires file (-f /path/to/file)")
	assert.NotContains(t, r.stdout, "Validating")
}

func TestRun_MissingFile(t *testing.T) {
	r := runCLI(t, "", "-f", filepath.Join(t.TempDir(), "missing.tsv"))
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "File does not exist!")
	assert.NotContains(t, r.stdout, "Validating")
}

func TestRun_UnknownMode(t *testing.T) {
	path := writeFile(t, "data.tsv", validData)
	r := runCLI(t, "", "-f", path, "--mode", "lenient")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "unknown validation mode")
}

func TestRun_UnexpectedArgument(t *testing.T) {
	r := runCLI(t, "", "data.tsv")
	assert.Equal(t, ExitError, r.code)
}

func TestRun_ValidFileEntersShell(t *testing.T) {
	path := writeFile(t, "data.tsv", validData)
	logPath := filepath.Join(t.TempDir(), "error.log")

	r := runCLI(t, "q\npos\nchr1\n15\ns\nx\n", "--file", path, "--error-log", logPath)
	require.Equal(t, ExitSuccess, r.code, r.stderr)

	assert.Contains(t, r.stdout, "Validating data now!")
	assert.Contains(t, r.stdout, "chromosome field reported no errors!")
	assert.Contains(t, r.stdout, "Data validation complete!")
	assert.Contains(t, r.stdout, "[2 rows x 5 columns]")
	assert.Contains(t, r.stdout, "Your Metrics")
	assert.Contains(t, r.stdout, "The average length is: 15.00")
	assert.Contains(t, r.stdout, "All done.")

	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err), "clean data writes no error log")
}

func TestRun_CollectAllRefusesShell(t *testing.T) {
	path := writeFile(t, "data.tsv", invalidData)
	logPath := filepath.Join(t.TempDir(), "error.log")

	r := runCLI(t, "x\n", "-f", path, "--error-log", logPath)
	assert.Equal(t, ExitError, r.code)

	assert.Contains(t, r.stdout, "chromosome field reported 1 error")
	assert.Contains(t, r.stdout, "start_pos field reported no errors!")
	assert.Contains(t, r.stdout, "Please correct your data and try again.")
	assert.NotContains(t, r.stdout, "Query data, get stats, or exit?")
	// start_pos 5 passes its range check, so the bad row fails four columns.
	assert.Contains(t, r.stderr, "4 invalid values")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Your value, chr23, at row 1 and col 0 does not contain appropriate data", lines[0])
}

func TestRun_FailFastAborts(t *testing.T) {
	path := writeFile(t, "data.tsv", invalidData)
	logPath := filepath.Join(t.TempDir(), "error.log")

	r := runCLI(t, "x\n", "-f", path, "--mode", "fail-fast", "--error-log", logPath)
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "Your value, chr23, at row 1 and col 0 does not contain appropriate data")
	assert.NotContains(t, r.stdout, "field reported", "no partial results")
	assert.NotContains(t, r.stdout, "Query data")

	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_MalformedFile(t *testing.T) {
	path := writeFile(t, "data.tsv", "chr1\t10\t20\n")
	r := runCLI(t, "", "-f", path, "--error-log", "")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "annotation parse error at line 1")
}

func TestRun_DuckDBBackend(t *testing.T) {
	path := writeFile(t, "data.tsv", validData)

	r := runCLI(t, "q\nfeat\ngeneB\nx\n", "-f", path, "--backend", "duckdb", "--error-log", "")
	require.Equal(t, ExitSuccess, r.code, r.stderr)

	idx := strings.Index(r.stdout, "Enter feature name: ")
	require.GreaterOrEqual(t, idx, 0)
	answer := r.stdout[idx:]
	assert.Contains(t, answer, "geneB")
	assert.NotContains(t, answer, "geneA")
}

func TestRun_EnvironmentConfig(t *testing.T) {
	path := writeFile(t, "data.tsv", invalidData)
	t.Setenv("GRIT_MODE", "fail-fast")

	r := runCLI(t, "", "-f", path, "--error-log", "")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "validation aborted")
}

func TestRun_Version(t *testing.T) {
	r := runCLI(t, "", "--version")
	assert.Equal(t, ExitSuccess, r.code)
	assert.Contains(t, r.stdout, "grit version dev")
}

func TestConfigSetAndGet(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"config", "set", "mode", "fail-fast"}, strings.NewReader(""), &out, &errOut)
	require.Equal(t, ExitSuccess, code, errOut.String())
	assert.Contains(t, out.String(), "Set mode = fail-fast")

	data, err := os.ReadFile(filepath.Join(home, ".grit.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "mode: fail-fast")

	out.Reset()
	code = run(context.Background(), []string{"config", "get", "mode"}, strings.NewReader(""), &out, &errOut)
	require.Equal(t, ExitSuccess, code, errOut.String())
	assert.Equal(t, "fail-fast\n", out.String())

	out.Reset()
	code = run(context.Background(), []string{"config"}, strings.NewReader(""), &out, &errOut)
	require.Equal(t, ExitSuccess, code, errOut.String())
	assert.Contains(t, out.String(), "mode: fail-fast")
}

func TestConfigSetUnknownKey(t *testing.T) {
	r := runCLI(t, "", "config", "set", "colour", "blue")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "unknown config key")
}

func TestConfigSetWritesOnlyThatKey(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := filepath.Join(home, ".grit.yaml")

	config := func(args ...string) {
		t.Helper()
		var out, errOut bytes.Buffer
		code := run(context.Background(), append([]string{"config", "set"}, args...), strings.NewReader(""), &out, &errOut)
		require.Equal(t, ExitSuccess, code, errOut.String())
	}

	config("mode", "fail-fast")
	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mode: fail-fast")
	assert.NotContains(t, string(data), "max_attempts")

	config("max_attempts", "3")
	data, err = os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mode: fail-fast")
	assert.Contains(t, string(data), "max_attempts: 3")
	for _, unset := range []string{"file:", "db:", "error_log:", "verbose:", "backend:"} {
		assert.NotContains(t, string(data), unset)
	}
}

func TestConfigSetRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"mode", "bogus"},
		{"backend", "sqlite"},
		{"max_attempts", "0"},
		{"max_attempts", "many"},
		{"verbose", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			home := t.TempDir()
			t.Setenv("HOME", home)

			var out, errOut bytes.Buffer
			code := run(context.Background(), []string{"config", "set", tt.key, tt.value}, strings.NewReader(""), &out, &errOut)
			assert.Equal(t, ExitUsage, code)

			_, err := os.Stat(filepath.Join(home, ".grit.yaml"))
			assert.ErrorIs(t, err, os.ErrNotExist, "nothing written")
		})
	}
}

func TestConfigSetStringKeepsWords(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"config", "set", "error_log", "no"}, strings.NewReader(""), &out, &errOut)
	require.Equal(t, ExitSuccess, code, errOut.String())

	out.Reset()
	code = run(context.Background(), []string{"config", "get", "error_log"}, strings.NewReader(""), &out, &errOut)
	require.Equal(t, ExitSuccess, code, errOut.String())
	assert.Equal(t, "no\n", out.String())
}
