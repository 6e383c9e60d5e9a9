package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, s string) Record {
	t.Helper()
	rec, err := DecodeJSON(strings.NewReader(s))
	require.NoError(t, err)
	return rec
}

func TestParseFieldSpec(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    FieldSpec
		wantErr string
	}{
		{name: "empty", input: "", want: nil},
		{name: "blank", input: "   ", want: nil},
		{name: "simple", input: "a,b", want: FieldSpec{"a", "b"}},
		{name: "dotted with spaces", input: " a.b , d ", want: FieldSpec{"a.b", "d"}},
		{name: "trailing comma", input: "a,", wantErr: "empty field path"},
		{name: "empty segment", input: "a..b", wantErr: "empty segment"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFieldSpec(tc.input)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestProjectFlattensNestedMappings(t *testing.T) {
	t.Parallel()

	rec := mustDecode(t, `{"a":{"b":1,"c":2},"d":3}`)
	p := Project(rec, nil)

	require.True(t, p.Single)
	require.Len(t, p.Rows, 1)
	assert.Equal(t, []string{"a.b", "a.c", "d"}, p.Rows[0].Keys())
}

func TestProjectSelectsAndOrdersFields(t *testing.T) {
	t.Parallel()

	rec := mustDecode(t, `{"a":{"b":1,"c":2},"d":3}`)
	p := Project(rec, FieldSpec{"a.b", "d"})

	require.Len(t, p.Rows, 1)
	row := p.Rows[0]
	assert.Equal(t, []string{"a.b", "d"}, row.Keys())

	_, hasDropped := row.Value("a.c")
	assert.False(t, hasDropped)
}

func TestProjectSubstitutesMissingMarker(t *testing.T) {
	t.Parallel()

	set := mustDecode(t, `[{"a":1,"b":2},{"a":3}]`)
	p := Project(set, FieldSpec{"b", "a"})

	require.Len(t, p.Rows, 2)
	for _, row := range p.Rows {
		assert.Equal(t, []string{"b", "a"}, row.Keys())
	}

	missing, ok := p.Rows[1].Value("b")
	require.True(t, ok)
	assert.True(t, missing.IsMissing())
}

func TestProjectCollapsesNestedListsToOneCell(t *testing.T) {
	t.Parallel()

	rec := mustDecode(t, `{"name":"Intervals","laps":[{"n":1},{"n":2}]}`)
	p := Project(rec, nil)

	require.Len(t, p.Rows, 1)
	laps, ok := p.Rows[0].Value("laps")
	require.True(t, ok)
	assert.Equal(t, `[{"n":1},{"n":2}]`, cellText(laps))
}

func TestProjectEmptyRecordSet(t *testing.T) {
	t.Parallel()

	p := Project(mustDecode(t, `[]`), nil)
	assert.False(t, p.Single)
	assert.Empty(t, p.Rows)
	assert.Empty(t, p.Header())
}

func TestProjectScalarBecomesValueColumn(t *testing.T) {
	t.Parallel()

	p := Project(mustDecode(t, `"Jane Doe"`), nil)
	require.True(t, p.Single)
	value, ok := p.Rows[0].Value("value")
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", cellText(value))
}

func TestHeaderUnionFirstSeenOrder(t *testing.T) {
	t.Parallel()

	set := mustDecode(t, `[{"a":1,"b":2},{"c":3,"a":4}]`)
	p := Project(set, nil)
	assert.Equal(t, []string{"a", "b", "c"}, p.Header())
}

func TestHeaderUsesFieldSpecForEmptySet(t *testing.T) {
	t.Parallel()

	p := Project(mustDecode(t, `[]`), FieldSpec{"x", "y"})
	assert.Equal(t, []string{"x", "y"}, p.Header())
}
