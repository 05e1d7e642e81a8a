package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Konsultn-Engineering/pinotconn/schema"
)

type renderer func(w io.Writer, cols []schema.Column, data [][]any) error

func rendererFor(format string) (renderer, error) {
	switch strings.ToLower(format) {
	case "table", "":
		return renderTable, nil
	case "json":
		return renderJSON, nil
	}
	return nil, fmt.Errorf("unknown format %q (want table or json)", format)
}

func renderTable(w io.Writer, cols []schema.Column, data [][]any) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(schema.Names(cols), "\t"))
	for _, row := range data {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	fmt.Fprintf(tw, "(%d rows)\n", len(data))
	return tw.Flush()
}

// renderJSON writes one object per row, keyed by column name.
func renderJSON(w io.Writer, cols []schema.Column, data [][]any) error {
	names := schema.Names(cols)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, row := range data {
		obj := make(map[string]any, len(names))
		for i, name := range names {
			if i < len(row) {
				obj[name] = jsonValue(row[i])
			}
		}
		if err := enc.Encode(obj); err != nil {
			return err
		}
	}
	return nil
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case pgtype.Numeric:
		return numericString(val)
	}
	return fmt.Sprint(v)
}

func jsonValue(v any) any {
	if n, ok := v.(pgtype.Numeric); ok {
		return json.Number(numericString(n))
	}
	return v
}

func numericString(n pgtype.Numeric) string {
	v, err := n.Value()
	if err != nil || v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
