package client

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedReader yields at most n bytes per Read to exercise frame reassembly
// across read boundaries
type chunkedReader struct {
	r io.Reader
	n int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if len(p) > c.n {
		p = p[:c.n]
	}
	return c.r.Read(p)
}

func newTestStream(body string, chunkSize int) *Stream {
	return NewStream(io.NopCloser(&chunkedReader{r: strings.NewReader(body), n: chunkSize}))
}

func TestStreamRecv(t *testing.T) {
	body := "data: {\"content\":\"Hello \"}\n\n" +
		"data: {\"content\":\"world\"}\n\n" +
		"data: {\"done\":true}\n\n"

	stream := newTestStream(body, 4096)
	defer stream.Close()

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Hello ", event.Content)

	event, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "world", event.Content)

	event, err = stream.Recv()
	require.NoError(t, err)
	assert.True(t, event.Done)

	assert.Equal(t, "Hello world", stream.Text())

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamReassemblesAcrossChunks(t *testing.T) {
	body := "data: {\"content\":\"split across many tiny reads\"}\n\n" +
		"data: {\"done\":true}\n\n"

	// Three bytes per read forces every frame to span several reads
	stream := newTestStream(body, 3)
	defer stream.Close()

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "split across many tiny reads", event.Content)

	event, err = stream.Recv()
	require.NoError(t, err)
	assert.True(t, event.Done)
}

func TestStreamSkipsMalformedLines(t *testing.T) {
	body := ": comment line\n" +
		"data: not json at all\n" +
		"event: unrelated\n" +
		"data: {\"content\":\"kept\"}\n\n" +
		"data: {\"done\":true}\n\n"

	stream := newTestStream(body, 4096)
	defer stream.Close()

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "kept", event.Content)

	event, err = stream.Recv()
	require.NoError(t, err)
	assert.True(t, event.Done)
	assert.Equal(t, "kept", stream.Text())
}

func TestStreamErrorEvent(t *testing.T) {
	body := "data: {\"content\":\"partial \"}\n\n" +
		"data: {\"error\":\"Failed to generate response\"}\n\n"

	stream := newTestStream(body, 4096)
	defer stream.Close()

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial ", event.Content)

	event, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "Failed to generate response", event.Error)
	assert.False(t, event.Done)
}

func TestStreamHandlesCRLF(t *testing.T) {
	body := "data: {\"content\":\"hi\"}\r\n\r\ndata: {\"done\":true}\r\n\r\n"

	stream := newTestStream(body, 4096)
	defer stream.Close()

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "hi", event.Content)

	event, err = stream.Recv()
	require.NoError(t, err)
	assert.True(t, event.Done)
}

func TestStreamTruncatedBody(t *testing.T) {
	// Server dies mid-frame: the dangling partial line is discarded
	body := "data: {\"content\":\"ok\"}\n\ndata: {\"cont"

	stream := newTestStream(body, 4096)
	defer stream.Close()

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "ok", event.Content)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}
