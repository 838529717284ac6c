package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnmarshalBinary(t *testing.T) {
	requireT := require.New(t)

	var b Board
	requireT.NoError(b.UnmarshalBinary([]byte("power-feed-v2")))
	requireT.Equal(PowerFeedV2, b)
	requireT.Equal("power-feed-v2", b.String())

	requireT.Error(b.UnmarshalBinary([]byte("power-feed-v9")))
}
