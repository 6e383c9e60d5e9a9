package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// Format is one of the closed set of output formats.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
	FormatTSV   Format = "tsv"
	FormatHuman Format = "human"
)

// Formats lists every supported format, in help-text order.
func Formats() []Format {
	return []Format{FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatHuman}
}

// ParseFormat validates a format name. Rejection happens here, at
// configuration resolution time, so renderers never see an unknown format.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if s == string(f) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (expected json, jsonl, csv, tsv, or human)", s)
}

// Options carries rendering switches that do not affect correctness.
type Options struct {
	NoHeader bool
}

// Render serializes a projection to w in the requested format.
func Render(w io.Writer, p Projection, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, p)
	case FormatJSONL:
		return renderJSONL(w, p)
	case FormatCSV:
		return renderDelimited(w, p, ',', opts)
	case FormatTSV:
		return renderDelimited(w, p, '\t', opts)
	case FormatHuman:
		return renderHuman(w, p, opts)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func rowRecord(row Row) Record {
	fields := make([]Field, 0, len(row.keys))
	for _, key := range row.keys {
		value := row.values[key]
		if value.IsMissing() {
			value = Null()
		}
		fields = append(fields, Field{Key: key, Value: value})
	}
	return Map(fields...)
}

func renderJSON(w io.Writer, p Projection) error {
	var rec Record
	if p.Single {
		rec = rowRecord(p.Rows[0])
	} else {
		items := make([]Record, 0, len(p.Rows))
		for _, row := range p.Rows {
			items = append(items, rowRecord(row))
		}
		rec = List(items...)
	}

	compact, err := rec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", "  "); err != nil {
		return fmt.Errorf("indent json: %w", err)
	}
	pretty.WriteByte('\n')

	_, err = w.Write(pretty.Bytes())
	return err
}

func renderJSONL(w io.Writer, p Projection) error {
	for _, row := range p.Rows {
		line, err := rowRecord(row).MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode jsonl: %w", err)
		}
		line = append(line, '\n')
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func renderDelimited(w io.Writer, p Projection, comma rune, opts Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	header := p.Header()
	if !opts.NoHeader && len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	cells := make([]string, len(header))
	for _, row := range p.Rows {
		for i, key := range header {
			value, ok := row.Value(key)
			if !ok {
				cells[i] = ""
				continue
			}
			cells[i] = cellText(value)
		}
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// cellText is the row-format rendering of one flattened scalar. Missing and
// null values both become an empty cell.
func cellText(rec Record) string {
	switch v := rec.Scalar().(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return string(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}
