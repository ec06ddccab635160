package export

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go.klb.dev/cliplog/internal/history"
)

func sample() []history.Entry {
	at := time.Date(2026, 10, 15, 9, 30, 5, 0, time.Local)
	return []history.Entry{
		{Content: "first, with comma", LastCopiedAt: at, Name: "n1"},
		{Content: "multi\nline", LastCopiedAt: at.Add(time.Minute), Note: "has \"quotes\""},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(sample())
	require.Equal(t, [][]string{
		{"2026-10-15 09:30:05", "first, with comma", "n1", ""},
		{"2026-10-15 09:31:05", "multi\nline", "", "has \"quotes\""},
	}, rows)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, Header, records[0])
	require.Equal(t, Rows(sample()), records[1:])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, ToFile(path, sample(), nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Equal(t, Header, rows[0])
	require.Equal(t, "first, with comma", rows[1][1])
	require.Equal(t, "multi\nline", rows[2][1])
}

func TestToFile_CSVAndUnknown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ToFile(filepath.Join(dir, "out.CSV"), sample(), nil))
	require.Error(t, ToFile(filepath.Join(dir, "out.txt"), sample(), nil))
}

func TestToFile_DashWritesToStdout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ToFile("-", sample(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, Header, records[0])
}
