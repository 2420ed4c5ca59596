package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalDeterministic(t *testing.T) {
	a := map[uint16][]byte{7: {1}, 1: {2, 3}, 300: nil}
	b := map[uint16][]byte{300: nil, 1: {2, 3}, 7: {1}}

	ea, err := Marshal(a)
	require.NoError(t, err)
	eb, err := Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, ea, eb, "map order must not affect encoding")
}

func TestUnmarshalFirstReturnsTrailer(t *testing.T) {
	head, err := Marshal(struct{ N int }{N: 5})
	require.NoError(t, err)
	data := append(head, 0xAA, 0xBB)

	var got struct{ N int }
	rest, err := UnmarshalFirst(data, &got)
	require.NoError(t, err)
	assert.Equal(t, 5, got.N)
	assert.Equal(t, []byte{0xAA, 0xBB}, rest)
}
