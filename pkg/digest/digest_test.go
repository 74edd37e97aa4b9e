package digest

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromReader_KnownVector(t *testing.T) {
	got, err := FromReader(bytes.NewReader([]byte("evidence01")))
	require.NoError(t, err)
	assert.Equal(t, "f39ed369f54cf3dff03541edfbda493bedbe5d5f599e3a895105064cc8c10fa8", got)
}

func TestFromBytes_KnownVector(t *testing.T) {
	got := FromBytes([]byte("evidence01"))
	assert.Equal(t, "f39ed369f54cf3dff03541edfbda493bedbe5d5f599e3a895105064cc8c10fa8", got)
}

func TestStreamAndBufferPathsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sizes := []int{0, 1, 10, chunkSize - 1, chunkSize, chunkSize + 1, 3*chunkSize + 7}

	for _, size := range sizes {
		payload := make([]byte, size)
		_, err := rng.Read(payload)
		require.NoError(t, err)

		fromStream, err := FromReader(bytes.NewReader(payload))
		require.NoError(t, err)
		assert.Equal(t, FromBytes(payload), fromStream, "size %d", size)
		assert.Len(t, fromStream, 64)
	}
}

func TestFromReader_ChunkBoundaryIndependent(t *testing.T) {
	payload := bytes.Repeat([]byte("abc123"), 5000)

	whole, err := FromReader(bytes.NewReader(payload))
	require.NoError(t, err)

	// OneByteReader forces the smallest possible chunks.
	bytewise, err := FromReader(iotest.OneByteReader(bytes.NewReader(payload)))
	require.NoError(t, err)

	assert.Equal(t, whole, bytewise)
}

func TestFromReader_PropagatesReadError(t *testing.T) {
	readErr := errors.New("disk gone")
	_, err := FromReader(iotest.ErrReader(readErr))
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
}
