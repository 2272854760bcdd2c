package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteCSV(t *testing.T) {
	table := Table{
		Columns: []string{"COURSE", "SUBJECT", "GRADE"},
		Rows: [][]string{
			{"Mathematics I", "Mathematics", "9.0"},
			{"Drawing, Basics", "Art\nStudio", " 6.0 "},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "COURSE,SUBJECT,GRADE\r\n" +
		"Mathematics I,Mathematics,9.0\r\n" +
		"\"Drawing, Basics\",Art Studio,6.0\r\n"
	if buf.String() != want {
		t.Errorf("unexpected csv:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWriteCSVRejectsRaggedRows(t *testing.T) {
	table := Table{Columns: []string{"A", "B"}, Rows: [][]string{{"1"}}}
	err := WriteCSV(&bytes.Buffer{}, table)
	if err == nil || !strings.Contains(err.Error(), "row 0 has 1 cells") {
		t.Errorf("expected ragged row error, got %v", err)
	}
}

func TestWriteCSVFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "report.csv")
	if err := WriteCSVFile(out, Table{Columns: []string{"A"}, Rows: [][]string{{"x"}}}); err != nil {
		t.Fatalf("WriteCSVFile: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "A\r\nx\r\n" {
		t.Errorf("unexpected content %q", b)
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 10, 12, 30, 5, 0, time.FixedZone("X", 3600))
	if got := FileName("admin-courses", "csv", at); got != "dashboard_admin-courses_20240310T113005Z.csv" {
		t.Errorf("FileName = %q", got)
	}
}

func TestFloatToString(t *testing.T) {
	testCases := []struct {
		input    float64
		expected string
	}{
		{1.5, "1.5"},
		{2.0, "2"},
		{0.0, "0"},
		{3.14159, "3.14159"},
	}

	for _, tc := range testCases {
		if result := FloatToString(tc.input); result != tc.expected {
			t.Errorf("FloatToString(%f) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestJoinList(t *testing.T) {
	if got := JoinList([]string{" Mon 09:00", "", "Wed 09:00 "}); got != "Mon 09:00 | Wed 09:00" {
		t.Errorf("JoinList = %q", got)
	}
	if got := JoinList(nil); got != "" {
		t.Errorf("JoinList(nil) = %q", got)
	}
}
