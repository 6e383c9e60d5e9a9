// Package output turns the tree-shaped records returned by Garmin Connect
// into flat rows and serializes them as json, jsonl, csv, tsv, or an aligned
// human-readable table.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Kind discriminates the three shapes a Record can take.
type Kind uint8

const (
	KindScalar Kind = iota
	KindList
	KindMapping
)

// Record is a tree-shaped value: a scalar, an ordered list of Records, or an
// ordered mapping of field name to Record. Mappings keep insertion order so
// flattened output preserves the field order the service returned.
//
// Records are immutable once built; the missing flag marks the placeholder
// substituted for a requested field path absent from a record.
type Record struct {
	kind    Kind
	scalar  any // string, json.Number, bool, or nil
	items   []Record
	keys    []string
	values  map[string]Record
	missing bool
}

// Missing is the placeholder for a requested field path absent from a record.
// Row formats render it as an empty cell, json formats as null.
var Missing = Record{missing: true}

func Null() Record { return Record{} }

func String(s string) Record { return Record{scalar: s} }

func Bool(b bool) Record { return Record{scalar: b} }

func Int(n int64) Record { return Record{scalar: json.Number(strconv.FormatInt(n, 10))} }

func Float(f float64) Record {
	return Record{scalar: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

func List(items ...Record) Record {
	return Record{kind: KindList, items: items}
}

// Field is one ordered key/value pair of a mapping Record.
type Field struct {
	Key   string
	Value Record
}

func Map(fields ...Field) Record {
	rec := Record{kind: KindMapping, values: make(map[string]Record, len(fields))}
	for _, f := range fields {
		if _, seen := rec.values[f.Key]; !seen {
			rec.keys = append(rec.keys, f.Key)
		}
		rec.values[f.Key] = f.Value
	}
	return rec
}

func (r Record) Kind() Kind { return r.kind }

func (r Record) IsMissing() bool { return r.missing }

func (r Record) IsNull() bool { return r.kind == KindScalar && r.scalar == nil }

// Scalar returns the underlying scalar value: string, json.Number, bool, or
// nil for null and missing records. Only meaningful when Kind is KindScalar.
func (r Record) Scalar() any { return r.scalar }

func (r Record) Len() int {
	switch r.kind {
	case KindList:
		return len(r.items)
	case KindMapping:
		return len(r.keys)
	default:
		return 0
	}
}

func (r Record) Items() []Record { return r.items }

func (r Record) Keys() []string { return r.keys }

func (r Record) Get(key string) (Record, bool) {
	v, ok := r.values[key]
	return v, ok
}

// DecodeJSON parses one JSON value into a Record, preserving object key order
// and keeping numbers as json.Number so rendering never reformats them.
func DecodeJSON(r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	rec, err := decodeValue(dec)
	if err != nil {
		return Record{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Record{}, errors.New("trailing data after JSON value")
	}

	return rec, nil
}

func DecodeJSONBytes(data []byte) (Record, error) {
	return DecodeJSON(bytes.NewReader(data))
}

func decodeValue(dec *json.Decoder) (Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeMapping(dec)
		case '[':
			return decodeList(dec)
		default:
			return Record{}, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		return Record{scalar: t}, nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Record{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeMapping(dec *json.Decoder) (Record, error) {
	rec := Record{kind: KindMapping, values: map[string]Record{}}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Record{}, fmt.Errorf("decode object key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return Record{}, fmt.Errorf("object key is %T, not string", keyTok)
		}

		value, err := decodeValue(dec)
		if err != nil {
			return Record{}, err
		}

		if _, seen := rec.values[key]; !seen {
			rec.keys = append(rec.keys, key)
		}
		rec.values[key] = value
	}

	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return Record{}, fmt.Errorf("decode object end: %w", err)
	}

	return rec, nil
}

func decodeList(dec *json.Decoder) (Record, error) {
	rec := Record{kind: KindList, items: []Record{}}
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return Record{}, err
		}
		rec.items = append(rec.items, item)
	}

	if _, err := dec.Token(); err != nil {
		return Record{}, fmt.Errorf("decode array end: %w", err)
	}

	return rec, nil
}

// MarshalJSON encodes the Record compactly with mapping keys in their
// original order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r Record) appendJSON(buf *bytes.Buffer) error {
	switch r.kind {
	case KindScalar:
		if r.scalar == nil {
			buf.WriteString("null")
			return nil
		}
		if n, ok := r.scalar.(json.Number); ok {
			buf.WriteString(string(n))
			return nil
		}
		data, err := json.Marshal(r.scalar)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindList:
		buf.WriteByte('[')
		for i, item := range r.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, key := range r.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyData, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(keyData)
			buf.WriteByte(':')
			if err := r.values[key].appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
