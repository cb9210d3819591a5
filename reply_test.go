package ftp

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadReply_SingleLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("220 hi\r\n"))
	reply, err := readReply(r)
	require.NoError(t, err)
	assert.Equal(t, 220, reply.Code)
	assert.Equal(t, "hi", reply.Text)
	assert.True(t, reply.Is2xx())
}

func TestReadReply_MultiLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader(
		"211-Extensions supported:\r\n MDTM\r\n SIZE\r\n211 End\r\n"))
	reply, err := readReply(r)
	require.NoError(t, err)
	assert.Equal(t, 211, reply.Code)
	assert.Contains(t, reply.Text, "MDTM")
	assert.Contains(t, reply.Text, "SIZE")
	assert.Len(t, reply.Lines, 4)
}

func TestReadReply_MalformedCode(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("abc hi\r\n"))
	_, err := readReply(r)
	assert.Error(t, err)
}

func TestReadReply_TooShort(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("1\r\n"))
	_, err := readReply(r)
	assert.Error(t, err)
}

// TestReadReply_ChunkBoundaryIndependence exercises invariant 2 from the
// base spec's testable-properties list: splitting the same byte stream at
// any boundary yields the same sequence of replies. A bufio.Reader fed one
// byte at a time must parse identically to one fed the whole buffer at once.
func TestReadReply_ChunkBoundaryIndependence(t *testing.T) {
	raw := "211-Extensions supported:\r\n MDTM\r\n SIZE\r\n211 End\r\n220 next reply\r\n"

	whole := bufio.NewReader(strings.NewReader(raw))
	wholeFirst, err := readReply(whole)
	require.NoError(t, err)
	wholeSecond, err := readReply(whole)
	require.NoError(t, err)

	chunked := bufio.NewReader(&byteAtATimeReader{data: []byte(raw)})
	chunkedFirst, err := readReply(chunked)
	require.NoError(t, err)
	chunkedSecond, err := readReply(chunked)
	require.NoError(t, err)

	assert.Equal(t, wholeFirst, chunkedFirst)
	assert.Equal(t, wholeSecond, chunkedSecond)
}

// byteAtATimeReader returns at most one byte per Read call, forcing the
// bufio.Reader above it to refill one byte at a time.
type byteAtATimeReader struct {
	data []byte
	pos  int
}

func (b *byteAtATimeReader) Read(p []byte) (int, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = b.data[b.pos]
	b.pos++
	return 1, nil
}
