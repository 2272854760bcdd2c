package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

/*
Report XML:

<dashboard_report screen="admin-courses" generated_ts="2024-03-10T11:30:05Z">
  <row>
    <field name="CODE">MAT-101</field>
    <field name="COURSE">Mathematics I</field>
  </row>
</dashboard_report>
*/

type xmlReport struct {
	XMLName     xml.Name `xml:"dashboard_report"`
	Screen      string   `xml:"screen,attr"`
	GeneratedTS string   `xml:"generated_ts,attr"`
	Rows        []xmlRow `xml:"row"`
}

type xmlRow struct {
	Fields []xmlField `xml:"field"`
}

type xmlField struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// WriteXML writes t as a dashboard_report document. Empty cells are
// omitted from their row.
func WriteXML(w io.Writer, screen string, at time.Time, t Table) error {
	out := xmlReport{
		Screen:      screen,
		GeneratedTS: at.UTC().Format(time.RFC3339),
		Rows:        make([]xmlRow, 0, len(t.Rows)),
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("export: row %d has %d cells, want %d", i, len(row), len(t.Columns))
		}
		var r xmlRow
		for j, cell := range cleanCells(row) {
			if cell == "" {
				continue
			}
			r.Fields = append(r.Fields, xmlField{Name: strings.ToLower(t.Columns[j]), Value: cell})
		}
		out.Rows = append(out.Rows, r)
	}

	b, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal xml: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("export: write xml: %w", err)
	}
	return nil
}

// WriteXMLFile writes the report to outPath, creating parent directories.
func WriteXMLFile(outPath, screen string, at time.Time, t Table) error {
	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", outPath, err)
	}
	if err := WriteXML(f, screen, at, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
