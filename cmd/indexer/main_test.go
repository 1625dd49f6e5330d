package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eargollo/indexer/internal/config"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	test1Digest = "f9b92ccae90fd354c44e0bc34a1b897562b86183dbc8c3633dbbd663db6f1af1"
	helloDigest = "ea8f163db38682925e4491c5e58d4bb3506ef8c14eb78a86e908c5624a67200f"
)

var resourcesDir = filepath.Join("..", "..", "testdata", "resources")

// execute runs the CLI with a clean environment and a temp data dir.
func execute(t *testing.T, dataDir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	for _, k := range []string{config.EnvBaseDir, config.EnvStrictText, config.EnvMaxHashesPerSecond, config.EnvLogLevel, config.EnvLogFormat, config.EnvDatabaseURL} {
		t.Setenv(k, "")
	}
	t.Setenv(config.EnvDataDir, dataDir)

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "indexer", cmd.Use)
	assert.NotEmpty(t, cmd.Long)
	assert.Contains(t, cmd.Version, version)

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"discover", "hash", "index", "runs", "duplicates", "serve"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("output"))
}

func TestDiscover_printsSortedMatches(t *testing.T) {
	out, _, err := execute(t, t.TempDir(), "discover", filepath.Join(resourcesDir, "**", "*.md"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resourcesDir, "test1.md")+"\n"+filepath.Join(resourcesDir, "test2.md")+"\n", out)
}

func TestDiscover_badPatternFails(t *testing.T) {
	_, _, err := execute(t, t.TempDir(), "discover", "src/[abc")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Error Discovering Glob: "))
}

func TestDiscover_jsonOutput(t *testing.T) {
	out, _, err := execute(t, t.TempDir(), "-o", "json", "discover", filepath.Join(resourcesDir, "*.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestHash_printsDigestAndPath(t *testing.T) {
	p := filepath.Join(resourcesDir, "test1.md")
	out, _, err := execute(t, t.TempDir(), "hash", p)
	require.NoError(t, err)
	assert.Equal(t, test1Digest+"  "+p+"\n", out)
}

func TestHash_missingFileExitsWithError(t *testing.T) {
	out, _, err := execute(t, t.TempDir(), "hash", filepath.Join(resourcesDir, "test1.md"), "/over/there/not/exists")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, "error: /over/there/not/exists: File does not exist: /over/there/not/exists")
}

func TestIndex_recordThenQueryCatalog(t *testing.T) {
	dataDir := t.TempDir()
	src := t.TempDir()
	for name, content := range map[string]string{"a.txt": "hello", "b.txt": "hello", "c.txt": "other"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte(content), 0644))
	}

	out, _, err := execute(t, dataDir, "-o", "json", "index", "--record", filepath.Join(src, "*.txt"))
	require.NoError(t, err)
	var res struct {
		RunID   string `json:"run_id"`
		Entries []struct {
			Digest string `json:"digest"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Entries, 3)
	assert.Equal(t, helloDigest, res.Entries[0].Digest)

	out, _, err = execute(t, dataDir, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, res.RunID)

	out, _, err = execute(t, dataDir, "duplicates", res.RunID)
	require.NoError(t, err)
	assert.Contains(t, out, helloDigest+"  2 files")
	assert.Contains(t, out, filepath.Join(src, "a.txt"))

	_, _, err = execute(t, dataDir, "duplicates", "no-such-run")
	assert.Error(t, err)
}

func TestIndex_appliesIgnoreFileUnlessDisabled(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "keep.md"), []byte("k"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "draft.md"), []byte("d"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".indexignore"), []byte("draft.md\n"), 0644))

	out, _, err := execute(t, t.TempDir(), "index", "--base-dir", src, "*.md")
	require.NoError(t, err)
	assert.NotContains(t, out, "draft.md")
	assert.Contains(t, out, "keep.md")

	out, _, err = execute(t, t.TempDir(), "index", "--base-dir", src, "--no-ignore", "*.md")
	require.NoError(t, err)
	assert.Contains(t, out, "draft.md")
}

func TestIndex_fileErrorsExitNonZero(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(src, "dir"), 0755))

	_, _, err := execute(t, t.TempDir(), "index", "--include-dirs", filepath.Join(src, "*"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be hashed")
}

func TestUnknownOutputFormatFails(t *testing.T) {
	_, _, err := execute(t, t.TempDir(), "-o", "xml", "discover", "*")
	assert.Error(t, err)
}
