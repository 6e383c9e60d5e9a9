package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, p Projection, format Format, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p, format, opts))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, f := range Formats() {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFormat("yaml")
	require.Error(t, err)
	assert.ErrorContains(t, err, `unsupported format "yaml"`)
}

func TestRenderJSONRoundTripsProjectedShape(t *testing.T) {
	t.Parallel()

	set := mustDecode(t, `[{"a":{"b":1},"c":"x"},{"a":{"b":2},"d":true}]`)
	p := Project(set, nil)

	out := render(t, p, FormatJSON, Options{})

	parsed, err := DecodeJSON(strings.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, KindList, parsed.Kind())

	reprojected := Project(parsed, nil)
	require.Len(t, reprojected.Rows, len(p.Rows))
	for i, row := range p.Rows {
		assert.Equal(t, row.Keys(), reprojected.Rows[i].Keys())
		for _, key := range row.Keys() {
			want, _ := row.Value(key)
			got, _ := reprojected.Rows[i].Value(key)
			assert.Equal(t, cellText(want), cellText(got))
		}
	}
}

func TestRenderJSONSingleRecordIsOneObject(t *testing.T) {
	t.Parallel()

	p := Project(mustDecode(t, `{"a":1}`), nil)
	out := render(t, p, FormatJSON, Options{})

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "a")
}

func TestRenderJSONLOneLinePerRow(t *testing.T) {
	t.Parallel()

	set := mustDecode(t, `[{"a":1},{"a":2},{"a":3}]`)
	out := render(t, Project(set, nil), FormatJSONL, Options{})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, json.Valid([]byte(line)))
	}
}

func TestRenderJSONLSingleRecordIsOneLine(t *testing.T) {
	t.Parallel()

	out := render(t, Project(mustDecode(t, `{"a":1}`), nil), FormatJSONL, Options{})
	assert.Equal(t, "{\"a\":1}\n", out)
}

func TestRenderCSVAndTSVDifferOnlyInDelimiter(t *testing.T) {
	t.Parallel()

	set := mustDecode(t, `[{"name":"Morning Run","km":5.2},{"name":"Evening Ride","km":21}]`)
	p := Project(set, nil)

	csvOut := render(t, p, FormatCSV, Options{})
	tsvOut := render(t, p, FormatTSV, Options{})

	csvLines := strings.Split(strings.TrimRight(csvOut, "\n"), "\n")
	tsvLines := strings.Split(strings.TrimRight(tsvOut, "\n"), "\n")
	require.Len(t, csvLines, 3)
	require.Len(t, tsvLines, 3)

	for i := range csvLines {
		assert.Equal(t, strings.Split(csvLines[i], ","), strings.Split(tsvLines[i], "\t"))
	}
}

func TestRenderCSVEscapesEmbeddedDelimiters(t *testing.T) {
	t.Parallel()

	set := mustDecode(t, `[{"name":"Run, hard","note":"say \"hi\""}]`)
	out := render(t, Project(set, nil), FormatCSV, Options{})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Run, hard","say ""hi"""`, lines[1])
}

func TestRenderCSVMissingFieldIsEmptyCell(t *testing.T) {
	t.Parallel()

	set := mustDecode(t, `[{"a":1,"b":2},{"a":3}]`)
	out := render(t, Project(set, FieldSpec{"a", "b"}), FormatCSV, Options{})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a,b", lines[0])
	assert.Equal(t, "3,", lines[2])
}

func TestRenderCSVUnionHeaderForHeterogeneousRows(t *testing.T) {
	t.Parallel()

	set := mustDecode(t, `[{"a":1,"b":2},{"c":3}]`)
	out := render(t, Project(set, nil), FormatCSV, Options{})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a,b,c", lines[0])
	assert.Equal(t, "1,2,", lines[1])
	assert.Equal(t, ",,3", lines[2])
}

func TestRenderEmptySetHeaderOnly(t *testing.T) {
	t.Parallel()

	p := Project(mustDecode(t, `[]`), FieldSpec{"a", "b"})

	withHeader := render(t, p, FormatCSV, Options{})
	assert.Equal(t, "a,b\n", withHeader)

	withoutHeader := render(t, p, FormatCSV, Options{NoHeader: true})
	assert.Empty(t, withoutHeader)
}

func TestRenderHumanSingleRecordLabelValue(t *testing.T) {
	t.Parallel()

	p := Project(mustDecode(t, `{"totalSteps":10432,"restingHeartRate":52}`), nil)
	out := render(t, p, FormatHuman, Options{})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "totalSteps")
	assert.Contains(t, lines[0], "10432")
	assert.Contains(t, lines[1], "restingHeartRate")
	assert.Contains(t, lines[1], "52")
}

func TestRenderHumanGridAlignsColumns(t *testing.T) {
	t.Parallel()

	set := mustDecode(t, `[{"name":"Run","km":5},{"name":"Long Ride","km":120}]`)
	out := render(t, Project(set, nil), FormatHuman, Options{})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	// Every km value starts in the same column.
	kmCol := strings.Index(lines[0], "km")
	require.Positive(t, kmCol)
	assert.Equal(t, "5", strings.TrimSpace(lines[1][kmCol:]))
	assert.Equal(t, "120", strings.TrimSpace(lines[2][kmCol:]))
}

func TestRenderHumanNoHeader(t *testing.T) {
	t.Parallel()

	set := mustDecode(t, `[{"a":1},{"a":2}]`)
	out := render(t, Project(set, nil), FormatHuman, Options{NoHeader: true})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "a")
}
