package output

import (
	"fmt"
	"strings"
)

// pathSeparator joins nested mapping keys into flat column names.
const pathSeparator = "."

// FieldSpec is the ordered set of dotted field paths the caller asked for. An
// empty FieldSpec means "all fields, in original order".
type FieldSpec []string

// ParseFieldSpec splits a comma-separated field list. Paths are trimmed;
// empty paths and empty path segments are rejected so typos surface at
// configuration time instead of producing silent empty columns.
func ParseFieldSpec(s string) (FieldSpec, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var spec FieldSpec
	for _, raw := range strings.Split(s, ",") {
		path := strings.TrimSpace(raw)
		if path == "" {
			return nil, fmt.Errorf("empty field path in %q", s)
		}
		for _, segment := range strings.Split(path, pathSeparator) {
			if segment == "" {
				return nil, fmt.Errorf("field path %q has an empty segment", path)
			}
		}
		spec = append(spec, path)
	}

	return spec, nil
}

// Row is one flattened record: an ordered mapping of flat column name to
// scalar Record.
type Row struct {
	keys   []string
	values map[string]Record
}

func (r Row) Keys() []string { return r.keys }

func (r Row) Value(key string) (Record, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *Row) set(key string, value Record) {
	if r.values == nil {
		r.values = map[string]Record{}
	}
	if _, seen := r.values[key]; !seen {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Projection is the flattened form of one Record or RecordSet. Single
// distinguishes a lone record from a one-element collection so renderers can
// keep scalar-shaped responses readable.
type Projection struct {
	Single bool
	Fields FieldSpec
	Rows   []Row
}

// Header returns the column set: the FieldSpec order when one was given,
// otherwise the union of row keys in first-seen order.
func (p Projection) Header() []string {
	if len(p.Fields) > 0 {
		return p.Fields
	}

	var header []string
	seen := map[string]bool{}
	for _, row := range p.Rows {
		for _, key := range row.keys {
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
	}
	return header
}

// Project flattens data into rows and applies the field selection. A list
// record projects to one row per element; anything else projects to a single
// row. Row cardinality never changes during flattening: lists nested inside a
// record are compact-encoded into one scalar cell.
func Project(data Record, fields FieldSpec) Projection {
	if data.Kind() == KindList {
		rows := make([]Row, 0, data.Len())
		for _, item := range data.Items() {
			rows = append(rows, projectOne(item, fields))
		}
		return Projection{Fields: fields, Rows: rows}
	}

	return Projection{Single: true, Fields: fields, Rows: []Row{projectOne(data, fields)}}
}

func projectOne(rec Record, fields FieldSpec) Row {
	flat := flatten(rec)
	if len(fields) == 0 {
		return flat
	}

	var row Row
	for _, path := range fields {
		value, ok := flat.Value(path)
		if !ok {
			value = Missing
		}
		row.set(path, value)
	}
	return row
}

// flatten walks the record depth-first, joining nested mapping keys with the
// path separator. A record that is not a mapping flattens to a single "value"
// column.
func flatten(rec Record) Row {
	var row Row
	if rec.Kind() != KindMapping {
		row.set("value", collapse(rec))
		return row
	}

	flattenInto(&row, "", rec)
	return row
}

func flattenInto(row *Row, prefix string, rec Record) {
	for _, key := range rec.Keys() {
		value, _ := rec.Get(key)
		path := key
		if prefix != "" {
			path = prefix + pathSeparator + key
		}

		if value.Kind() == KindMapping {
			flattenInto(row, path, value)
			continue
		}
		row.set(path, collapse(value))
	}
}

// collapse reduces a non-mapping value to one scalar cell. Lists become their
// compact JSON encoding so a nested list occupies exactly one column.
func collapse(rec Record) Record {
	if rec.Kind() == KindScalar {
		return rec
	}

	encoded, err := rec.MarshalJSON()
	if err != nil {
		// Only reachable with scalar types Record never holds.
		return String(fmt.Sprintf("%v", rec.scalar))
	}
	return String(string(encoded))
}
