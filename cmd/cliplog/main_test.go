package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/persist"
)

// run executes the CLI against dir with no daemon listening.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args,
		"--data-dir", dir,
		"--socket", filepath.Join(dir, "none.sock"),
	))
	err := root.Execute()
	return out.String(), err
}

func seed(t *testing.T, dir string, contents ...string) {
	t.Helper()
	s := history.Open(persist.NewFile(filepath.Join(dir, "history.json")))
	for _, c := range contents {
		_, created := s.AddIfAbsent(c)
		require.True(t, created)
	}
}

func TestCLI_OfflineListAndEdit(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "hello world", "another thing")
	ref := history.Ref("hello world")[:8]

	out, err := run(t, dir, "list")
	require.NoError(t, err)
	require.Contains(t, out, "REF")
	require.Contains(t, out, "hello world")
	require.Contains(t, out, "another thing")

	_, err = run(t, dir, "fav", ref)
	require.NoError(t, err)
	_, err = run(t, dir, "name", ref, "greeting")
	require.NoError(t, err)

	out, err = run(t, dir, "favorites")
	require.NoError(t, err)
	require.Contains(t, out, "greeting")
	require.NotContains(t, out, "another thing")

	out, err = run(t, dir, "search", "WORLD")
	require.NoError(t, err)
	require.Contains(t, out, "hello world")
	require.NotContains(t, out, "another thing")

	out, err = run(t, dir, "show", ref)
	require.NoError(t, err)
	require.Contains(t, out, "hello world")

	out, err = run(t, dir, "delete", ref)
	require.NoError(t, err)
	require.Contains(t, out, "deleted")

	snap, err := persist.NewFile(filepath.Join(dir, "history.json")).Load()
	require.NoError(t, err)
	require.NotContains(t, snap, "hello world")
}

func TestCLI_UnknownRef(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "only")

	_, err := run(t, dir, "note", "0000000000000000", "x")
	require.ErrorIs(t, err, history.ErrNotFound)
}

func TestCLI_Export(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "first", "second")
	out := filepath.Join(dir, "out.csv")

	_, err := run(t, dir, "export", "--out", out, history.Ref("second"), history.Ref("first"))
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "second", records[1][1])
	require.Equal(t, "first", records[2][1])
}

func TestCLI_StatusWithoutDaemon(t *testing.T) {
	out, err := run(t, t.TempDir(), "status")
	require.NoError(t, err)
	require.Contains(t, out, "not running")
}

func TestCLI_ExportToStdout(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, "piped")

	out, err := run(t, dir, "export", "--out", "-", history.Ref("piped"))
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"Timestamp", "Content", "Name", "Note"}, records[0])
	require.Equal(t, "piped", records[1][1])
}
