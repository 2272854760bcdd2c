package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"

	"academic-dashboard/internal/dashboard"
	"academic-dashboard/internal/devutil"
)

type renderFunc func(w io.Writer, v dashboard.View) error

func renderer(format string) (renderFunc, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return renderTable, nil
	case "json":
		return renderJSON, nil
	case "yaml", "yml":
		return renderYAML, nil
	}
	return nil, fmt.Errorf("unknown format %q (table, json, yaml)", format)
}

// projected narrows each row to keys before rendering. The table format
// renders the screen's fixed columns and is left untouched.
func projected(next renderFunc, keys []string) renderFunc {
	return func(w io.Writer, v dashboard.View) error {
		rows, err := devutil.PickAll(v.Rows, keys...)
		if err != nil {
			return err
		}
		v.Rows = rows
		return next(w, v)
	}
}

func splitFields(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func renderJSON(w io.Writer, v dashboard.View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v dashboard.View) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func renderTable(w io.Writer, v dashboard.View) error {
	fmt.Fprintf(w, "%s (%s, %s)\n", v.Title, v.User.Name, v.User.Role)
	if len(v.Categories) > 0 {
		fmt.Fprintf(w, "categories: %s\n", strings.Join(v.Categories, ", "))
	}
	if v.Summary != nil {
		fmt.Fprintf(w, "average: %s over %d grades\n", v.Summary.Display, v.Summary.Count)
		for _, s := range v.Summary.Subjects {
			fmt.Fprintf(w, "  %s: %s\n", s.Subject, s.Display)
		}
	}
	fmt.Fprintln(w)

	if len(v.Table.Rows) == 0 {
		fmt.Fprintln(w, "no results")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(v.Table.Columns, "\t"))
	for _, row := range v.Table.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if v.Dropped > 0 {
		fmt.Fprintf(w, "\n%d record(s) skipped: malformed data\n", v.Dropped)
	}
	return nil
}
