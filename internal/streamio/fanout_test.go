package streamio

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type erroringWriter struct{}

func (erroringWriter) Write(p []byte) (int, error) {
	return 0, errors.New("boom")
}

func TestWriteFansOutToEveryObserver(t *testing.T) {
	f := New()
	var a, b bytes.Buffer
	require.NoError(t, f.Register(&a))
	require.NoError(t, f.Register(&b))

	n, err := f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", a.String())
	assert.Equal(t, "hello", b.String())
}

func TestWriteReturnsFirstErrorButStillWritesToAll(t *testing.T) {
	f := New()
	var good bytes.Buffer
	require.NoError(t, f.Register(erroringWriter{}))
	require.NoError(t, f.Register(&good))

	_, err := f.Write([]byte("x"))
	assert.Error(t, err)
	assert.Equal(t, "x", good.String())
}

func TestDeregisterRemovesObserver(t *testing.T) {
	f := New()
	var a bytes.Buffer
	require.NoError(t, f.Register(&a))
	require.NoError(t, f.Deregister(&a))

	_, err := f.Write([]byte("ignored"))
	require.NoError(t, err)
	assert.Empty(t, a.String())
}
