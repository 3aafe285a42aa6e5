package copula

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableFloatJSON(t *testing.T) {
	t.Run("NA encodes as null", func(t *testing.T) {
		data, err := json.Marshal(NAF())
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})

	t.Run("value encodes as number", func(t *testing.T) {
		data, err := json.Marshal(NullableFloat(0.042))
		require.NoError(t, err)
		assert.Equal(t, "0.042", string(data))
	})

	t.Run("null decodes as NA", func(t *testing.T) {
		var f NullableFloat
		require.NoError(t, json.Unmarshal([]byte("null"), &f))
		assert.True(t, f.IsNA())
	})

	t.Run("number round-trips", func(t *testing.T) {
		var f NullableFloat
		require.NoError(t, json.Unmarshal([]byte("0.875"), &f))
		assert.Equal(t, 0.875, f.Float64())
	})
}

func TestNullableFloatInsideStruct(t *testing.T) {
	result := GoFResult{
		Family:    FamilyComonotonic,
		Statistic: NullableFloat(1.5),
		PValue:    NAF(),
		Method:    GoFMethodObservedOnly,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"p_value":null`)
	assert.Contains(t, string(data), `"statistic":1.5`)

	var decoded GoFResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.PValue.IsNA())
	assert.Equal(t, 1.5, decoded.Statistic.Float64())
}

func TestNullableFloatSQL(t *testing.T) {
	v, err := NAF().Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NullableFloat(2.5).Value()
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	var f NullableFloat
	require.NoError(t, f.Scan(nil))
	assert.True(t, f.IsNA())

	require.NoError(t, f.Scan(3.25))
	assert.Equal(t, 3.25, f.Float64())

	assert.Error(t, f.Scan("not a number"))
}
