package backend_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ecsfs/go-ecsfs/backend"
	"github.com/ecsfs/go-ecsfs/backend/memory"
)

func TestSubStorage(t *testing.T) {
	underlying := memory.New("big.img", 32)
	sub := backend.Sub(underlying, 8, 16)
	require.Equal(t, int64(16), sub.Size())

	w, err := sub.Writable()
	require.NoError(t, err)
	n, err := w.WriteAt([]byte("window"), 0)
	require.NoError(t, err)
	require.Equal(t, 6, n)
	require.Equal(t, "window", string(underlying.Bytes()[8:14]))

	// clipped at the end of the window, the underlying storage beyond it is untouched
	n, err = w.WriteAt([]byte("0123456789"), 12)
	require.ErrorIs(t, err, io.ErrShortWrite)
	require.Equal(t, 4, n)
	require.Equal(t, "0123", string(underlying.Bytes()[20:24]))
	require.Equal(t, make([]byte, 8), underlying.Bytes()[24:])

	b := make([]byte, 8)
	n, err = sub.ReadAt(b, 12)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 4, n)
	require.Equal(t, "0123", string(b[:n]))

	n, err = sub.ReadAt(b, 16)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 0, n)
	_, err = sub.ReadAt(b, -1)
	require.Error(t, err)

	pos, err := sub.Seek(-4, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(12), pos)
	all, err := io.ReadAll(sub)
	require.NoError(t, err)
	require.Equal(t, "0123", string(all))
}

func TestSubStorageReadOnly(t *testing.T) {
	sub := backend.Sub(memory.FromBytes("ro.img", make([]byte, 32), true), 0, 16)
	_, err := sub.Writable()
	require.ErrorIs(t, err, backend.ErrIncorrectOpenMode)
}
