package transport

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("hello")))
	require.NoError(t, WriteFrame(&buf, nil))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got, err = ReadFrame(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFrameTooLarge(t *testing.T) {
	err := WriteFrame(&bytes.Buffer{}, make([]byte, MaxFrameBytes+1))
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	// A header announcing more than the cap is rejected before allocation.
	hdr := []byte{0x81, 0x80, 0x80, 0x08} // 16 MiB + 1
	_, err = ReadFrame(bytes.NewReader(hdr))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestFrameTruncated(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{0x05, 'a', 'b'}))
	assert.Error(t, err)
}

func startServer(t *testing.T, h Handler) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.sock")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewUnixServer(UnixListener{Path: path}).Serve(ctx, h) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	c := NewUnixClient(path)
	require.Eventually(t, func() bool {
		_, err := c.Do(context.Background(), []byte("ping"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	return path
}

func TestUnixRoundTrip(t *testing.T) {
	path := startServer(t, HandlerFunc(func(ctx context.Context, req []byte) ([]byte, error) {
		return append([]byte("echo:"), req...), nil
	}))

	resp, err := NewUnixClient(path).Do(context.Background(), []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "echo:abc", string(resp))
}

func TestUnixHandlerErrorClosesConnection(t *testing.T) {
	path := startServer(t, HandlerFunc(func(ctx context.Context, req []byte) ([]byte, error) {
		if string(req) == "ping" {
			return nil, nil
		}
		return nil, errors.New("boom")
	}))

	_, err := NewUnixClient(path).Do(context.Background(), []byte("x"))
	assert.Error(t, err)
}

func TestUnixClientHonoursContext(t *testing.T) {
	release := make(chan struct{})
	path := startServer(t, HandlerFunc(func(ctx context.Context, req []byte) ([]byte, error) {
		if string(req) != "ping" {
			<-release
		}
		return nil, nil
	}))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewUnixClient(path).Do(ctx, []byte("slow"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
