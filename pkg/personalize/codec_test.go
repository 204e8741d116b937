package personalize

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	v := Variants{"b": "1", "a": "luxury"}
	assert.Equal(t, "a_luxury,b_1", Encode(v))
	assert.Equal(t, "", Encode(Variants{}))
}

func TestDecodeIgnoresMalformedPairs(t *testing.T) {
	got := Decode("0_luxury,,nounderscore,_novariant,noexp_, 2_b ,3_x_y")
	assert.Equal(t, Variants{"0": "luxury", "2": "b", "3": "x_y"}, got)
	assert.Empty(t, Decode(""))
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		m := Variants{}
		for j := 0; j < rng.Intn(6); j++ {
			exp := "e" + strconv.Itoa(rng.Intn(50))
			m[exp] = "v" + strconv.Itoa(rng.Intn(9)) + "_" + strconv.Itoa(j)
		}
		require.Equal(t, m, Decode(Encode(m)), "iteration %d", i)
	}
}

func TestAliases(t *testing.T) {
	v := Variants{"1": "b", "0": "a", "2": ""}
	assert.Equal(t, []string{"cs_personalize_0_a", "cs_personalize_1_b"}, v.Aliases())
	assert.Equal(t, []string{"cs_personalize_0_luxury"}, ParamToAliases("0_luxury"))
}

func TestParseAlias(t *testing.T) {
	exp, variant, ok := ParseAlias("cs_personalize_0_luxury")
	require.True(t, ok)
	assert.Equal(t, "0", exp)
	assert.Equal(t, "luxury", variant)

	_, _, ok = ParseAlias("personalize_0_luxury")
	assert.False(t, ok)
	_, _, ok = ParseAlias("cs_personalize_0")
	assert.False(t, ok)
}
