package ftp

import (
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenfield/ftpclient/internal/ftptest"
)

func TestUpload_ReportsProgress(t *testing.T) {
	srv := ftptest.New(t)
	srv.Reply("FEAT", "211-features\r\n EPSV\r\n211 end")

	var received []byte
	srv.Handle("EPSV", func(c *textproto.Conn, _ string) {
		port := srv.ListenData()
		_ = c.PrintfLine("%s", ftptest.EPSVReply(port))
	})
	srv.Handle("STOR", func(c *textproto.Conn, args string) {
		assert.Equal(t, "remote.txt", args)
		_ = c.PrintfLine("150 ok, send the data")
		conn, err := srv.AcceptData()
		require.NoError(t, err)
		buf := make([]byte, 256)
		n, _ := conn.Read(buf)
		received = buf[:n]
		_ = conn.Close()
		_ = c.PrintfLine("226 transfer complete")
	})

	client := connectTo(t, srv)

	dir := t.TempDir()
	local := filepath.Join(dir, "local.txt")
	require.NoError(t, os.WriteFile(local, []byte("hello upload"), 0644))

	var lastCurrent, lastTotal int64
	err := client.Upload(local, "remote.txt", func(current, total int64) {
		lastCurrent, lastTotal = current, total
	})
	require.NoError(t, err)

	assert.Equal(t, "hello upload", string(received))
	assert.EqualValues(t, len("hello upload"), lastCurrent)
	assert.EqualValues(t, len("hello upload"), lastTotal)
}

func TestDownload_RefusesOverwriteByDefault(t *testing.T) {
	srv := ftptest.New(t)
	client := connectTo(t, srv)

	dir := t.TempDir()
	dst := filepath.Join(dir, "existing.txt")
	require.NoError(t, os.WriteFile(dst, []byte("already here"), 0644))

	err := client.Download("remote.txt", dst, false, nil)
	require.Error(t, err)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindExists, ferr.Kind)
}

func TestDownload_WritesFile(t *testing.T) {
	srv := ftptest.New(t)
	srv.Reply("FEAT", "211-features\r\n EPSV\r\n211 end")

	srv.Handle("EPSV", func(c *textproto.Conn, _ string) {
		port := srv.ListenData()
		_ = c.PrintfLine("%s", ftptest.EPSVReply(port))
	})
	srv.Handle("RETR", func(c *textproto.Conn, args string) {
		assert.Equal(t, "remote.txt", args)
		_ = c.PrintfLine("150 opening data connection")
		conn, err := srv.AcceptData()
		require.NoError(t, err)
		_, _ = conn.Write([]byte("downloaded content"))
		_ = conn.Close()
		_ = c.PrintfLine("226 transfer complete")
	})

	client := connectTo(t, srv)

	dir := t.TempDir()
	dst := filepath.Join(dir, "out.txt")

	err := client.Download("remote.txt", dst, false, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "downloaded content", string(data))
}
