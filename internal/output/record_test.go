package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONPreservesKeyOrder(t *testing.T) {
	t.Parallel()

	rec, err := DecodeJSON(strings.NewReader(`{"zulu":1,"alpha":2,"mike":{"b":true,"a":null}}`))
	require.NoError(t, err)

	require.Equal(t, KindMapping, rec.Kind())
	assert.Equal(t, []string{"zulu", "alpha", "mike"}, rec.Keys())

	nested, ok := rec.Get("mike")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, nested.Keys())
}

func TestDecodeJSONKeepsNumbersVerbatim(t *testing.T) {
	t.Parallel()

	rec, err := DecodeJSON(strings.NewReader(`{"distance":12345.6789012345,"id":17023456789}`))
	require.NoError(t, err)

	encoded, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"distance":12345.6789012345,"id":17023456789}`, string(encoded))
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	t.Parallel()

	_, err := DecodeJSON(strings.NewReader(`{"a":1} {"b":2}`))
	require.Error(t, err)
	assert.ErrorContains(t, err, "trailing data")
}

func TestMarshalJSONRoundTrip(t *testing.T) {
	t.Parallel()

	input := `[{"activityId":1,"name":"Morning Run","splits":[1,2,3]},{"activityId":2,"name":null}]`
	rec, err := DecodeJSON(strings.NewReader(input))
	require.NoError(t, err)

	encoded, err := rec.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, input, string(encoded))
}

func TestMapDeduplicatesKeys(t *testing.T) {
	t.Parallel()

	rec := Map(
		Field{Key: "a", Value: Int(1)},
		Field{Key: "a", Value: Int(2)},
		Field{Key: "b", Value: String("x")},
	)

	assert.Equal(t, []string{"a", "b"}, rec.Keys())
	value, ok := rec.Get("a")
	require.True(t, ok)
	assert.Equal(t, "2", cellText(value))
}
