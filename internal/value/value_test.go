package value

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	assert.Equal(t, NumberKind, Parse("20").Kind())
	assert.Equal(t, NumberKind, Parse(" 3.5 ").Kind())
	assert.Equal(t, StringKind, Parse("CS").Kind())
	assert.Equal(t, StringKind, Parse("").Kind())
	assert.Equal(t, StringKind, Parse("NaN").Kind())
	assert.Equal(t, StringKind, Parse("Inf").Kind())
	assert.Equal(t, "20", Parse("20.0").String())
}

func TestLooseEquality(t *testing.T) {
	assert.True(t, Equal(Int(20), Str("20")))
	assert.True(t, Equal(Str("20"), Str("20.0")))
	assert.True(t, Equal(Str("CS"), Str("CS")))
	assert.False(t, Equal(Str("CS"), Str("cs")))
	assert.False(t, Equal(Int(1), Str("one")))
	assert.True(t, Equal(Num(0), Num(-0.0)))

	// LooseKey must agree with Equal
	pairs := [][2]Value{
		{Int(20), Str("20")},
		{Str("20"), Str("20.0")},
		{Int(1), Str("one")},
		{Str("a"), Str("b")},
	}
	for _, p := range pairs {
		assert.Equal(t, Equal(p[0], p[1]), p[0].LooseKey() == p[1].LooseKey(), "%v vs %v", p[0], p[1])
	}
}

func TestIdentityIsStrict(t *testing.T) {
	assert.NotEqual(t, Int(20).Identity(), Str("20").Identity())
	assert.Equal(t, Int(20).Identity(), Num(20.0).Identity())
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(Int(9), Int(10)))
	assert.Equal(t, -1, Compare(Str("9"), Int(10)))
	assert.Equal(t, 1, Compare(Str("9"), Str("10a")))
	assert.Equal(t, 0, Compare(Str("x"), Str("x")))
	assert.Equal(t, 1, Compare(Str("b"), Str("a")))
}

func TestTruthy(t *testing.T) {
	assert.True(t, Int(1).Truthy())
	assert.False(t, Int(0).Truthy())
	assert.True(t, Str("x").Truthy())
	assert.False(t, Str("").Truthy())
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal([]Value{Int(5), Str("Vikram Singh"), Num(2.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `[5, "Vikram Singh", 2.5]`, string(data))

	var decoded []Value
	require.NoError(t, json.Unmarshal([]byte(`[1, "two", true, null]`), &decoded))
	require.Len(t, decoded, 4)
	assert.True(t, decoded[0].IsNumber())
	assert.Equal(t, "two", decoded[1].String())
	assert.Equal(t, "true", decoded[2].String())
	assert.Equal(t, "", decoded[3].String())
}
