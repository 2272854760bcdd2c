package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Table is a screen rendered to text cells. Every row has len(Columns)
// cells.
type Table struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// WriteCSV writes the header and rows; CRLF line endings to match what
// spreadsheet imports expect.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("export: row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
		if err := cw.Write(cleanCells(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes t to outPath, creating parent directories.
func WriteCSVFile(outPath string, t Table) error {
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", outPath, err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FileName is the report name for a screen exported at the given time;
// ext is the format ("csv", "xml").
func FileName(screen, ext string, at time.Time) string {
	return fmt.Sprintf("dashboard_%s_%s.%s", screen, at.UTC().Format("20060102T150405Z"), ext)
}

// FloatToString renders without trailing zeros ("2", "1.5").
func FloatToString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// JoinList joins list values with " | " so they never clash with commas.
func JoinList(in []string) string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, " | ")
}

func cleanCells(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		// avoid newlines inside cells
		s = strings.ReplaceAll(s, "\r", " ")
		s = strings.ReplaceAll(s, "\n", " ")
		out[i] = strings.TrimSpace(s)
	}
	return out
}
