package ftp

import (
	"net"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiateFeatures_AllKnown(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cc := newControlChannel(client, time.Second, nil, nil)

	go func() {
		tc := textproto.NewConn(server)
		_, _ = tc.ReadLine()
		_ = tc.PrintfLine("211-Extensions supported:\r\n MDTM\r\n SIZE\r\n MLSD\r\n MLST\r\n UTF8\r\n MFMT\r\n EPSV\r\n211 End")
	}()

	fs, err := negotiateFeatures(cc)
	require.NoError(t, err)
	assert.True(t, fs.MDTM)
	assert.True(t, fs.SIZE)
	assert.True(t, fs.MLST)
	assert.True(t, fs.MLSD)
	assert.True(t, fs.UTF8)
	assert.True(t, fs.MFMT)
	assert.True(t, fs.EPSV)
}

func TestNegotiateFeatures_NonFEATReply(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	cc := newControlChannel(client, time.Second, nil, nil)

	go func() {
		tc := textproto.NewConn(server)
		_, _ = tc.ReadLine()
		_ = tc.PrintfLine("500 unknown command")
	}()

	_, err := negotiateFeatures(cc)
	require.Error(t, err)
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindProtocol, ferr.Kind)
}
