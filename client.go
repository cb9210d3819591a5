package ftp

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wrenfield/ftpclient/internal/ratelimit"
)

// Client is the high-level façade over the control-channel protocol engine
// (spec §2 item 8): directory navigation, listing, upload/download with
// progress, rename, recursive delete, and size/mtime queries. It owns
// exactly one controlChannel for its lifetime.
type Client struct {
	mu sync.Mutex

	config  Config
	dialer  *net.Dialer
	logger  *slog.Logger
	limiter *ratelimit.Limiter
	metrics *Metrics

	sessionID uuid.UUID

	cc       *controlChannel
	features FeatureSet

	quitCh chan struct{}
}

// Connect dials host:port, completes the login handshake described in
// §4.6, and returns a ready-to-use Client. When config.KeepAlive is
// positive, the returned Client owns a background keepalive goroutine that
// stops when Disconnect is called.
func Connect(config Config, opts ...Option) (*Client, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:    config,
		dialer:    &net.Dialer{Timeout: config.Timeout},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessionID: uuid.New(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, wrapError(KindArgument, err)
		}
	}
	c.dialer.Timeout = config.Timeout
	c.logger = c.logger.With("session", c.sessionID.String())

	addr := net.JoinHostPort(config.Host, fmt.Sprintf("%d", config.Port))
	c.logger.Debug("dialing ftp server", "addr", addr)

	conn, err := c.dialer.Dial("tcp", addr)
	if err != nil {
		return nil, wrapError(KindNetwork, err)
	}

	c.cc = newControlChannel(conn, config.Timeout, c.logger, c.metrics)

	greeting, err := c.cc.recvReply()
	if err != nil {
		c.cc.close()
		return nil, err
	}
	if greeting.Code != 220 {
		c.cc.close()
		return nil, protocolErr("CONNECT", greeting)
	}

	if err := c.login(config.User, config.Password); err != nil {
		c.cc.close()
		return nil, err
	}

	c.startKeepAlive()

	return c, nil
}

// startKeepAlive sends NOOP every KeepAlive interval while idle. It takes
// c.mu itself so a tick can never interleave with a transfer's trailing
// completion reply, which is read outside of cc's own per-command lock.
func (c *Client) startKeepAlive() {
	if c.config.KeepAlive <= 0 {
		return
	}

	c.quitCh = make(chan struct{})
	ticker := time.NewTicker(c.config.KeepAlive)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.mu.Lock()
				_, err := c.cc.command("NOOP")
				c.mu.Unlock()
				if err != nil {
					c.logger.Debug("keepalive noop failed", "error", err)
				}
			case <-c.quitCh:
				return
			}
		}
	}()
}

// Disconnect sends QUIT and releases the control connection. Idempotent.
func (c *Client) Disconnect() error {
	if c.quitCh != nil {
		close(c.quitCh)
		c.quitCh = nil
	}
	if c.cc == nil || c.cc.closed {
		return nil
	}
	err := c.quitCmd()
	c.cc.close()
	return err
}

// GetFeatures returns the boolean feature set negotiated at login.
func (c *Client) GetFeatures() FeatureSet {
	return c.features
}

// GetCurrentDirectory returns the server's current working directory (PWD).
func (c *Client) GetCurrentDirectory() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pwd()
}

// SetCurrentDirectory changes the server's current working directory (CWD),
// returning *Protocol if the server rejects it.
func (c *Client) SetCurrentDirectory(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok, err := c.cwd(path)
	if err != nil {
		return err
	}
	if !ok {
		return newError(KindProtocol, "CWD", path, 0)
	}
	return nil
}

// GetFiles lists path (or the current directory, if empty) and returns only
// the entries of kind file.
func (c *Client) GetFiles(path string) ([]DirEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.listCmd(path)
	if err != nil {
		return nil, err
	}
	return filterKind(entries, KindFile), nil
}

// GetDirectories lists path (or the current directory, if empty) and
// returns only the entries of kind dir.
func (c *Client) GetDirectories(path string) ([]DirEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.listCmd(path)
	if err != nil {
		return nil, err
	}
	return filterKind(entries, KindDir), nil
}

func filterKind(entries []DirEntry, kind Kind) []DirEntry {
	var out []DirEntry
	for _, e := range entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// NameList returns the raw names produced by NLST, without any structured
// parsing (supplemented feature, not in the base command catalog).
func (c *Client) NameList(path string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nlstCmd(path)
}

// CreateDir creates a directory. When recursive is false it issues a bare
// MKD; when true it walks the path per §4.6.1, creating every missing
// intermediate segment.
func (c *Client) CreateDir(path string, recursive bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !recursive {
		reply, err := c.cc.command("MKD", path)
		if err != nil {
			return err
		}
		if reply.Code != 257 {
			return protocolErr("MKD", reply)
		}
		return nil
	}
	return c.mkdRecursive(path)
}

// DeleteDirectory removes a directory. When recursive is false it issues a
// bare RMD; when true it performs the walk-and-delete algorithm in §4.6.2.
func (c *Client) DeleteDirectory(path string, recursive bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !recursive {
		reply, err := c.cc.command("RMD", path)
		if err != nil {
			return err
		}
		if reply.Code == 550 {
			return newError(KindNotFound, "RMD", reply.Text, reply.Code)
		}
		if reply.Code != 250 {
			return protocolErr("RMD", reply)
		}
		return nil
	}
	return c.rmdRecursive(path)
}

// DeleteFile removes a single file.
func (c *Client) DeleteFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleCmd(path)
}

// Rename renames a remote file or directory via RNFR/RNTO.
func (c *Client) Rename(from, to string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renameCmd(from, to)
}

// FileExists implements the file-exists probe in §4.6.4.
func (c *Client) FileExists(path string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fileExists(path)
}

// DirectoryExists implements the directory-exists probe in §4.6.3, saving
// and restoring the current directory around the attempt.
func (c *Client) DirectoryExists(path string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.directoryExists(path)
}

// GetFileSize returns the remote file's size via SIZE.
func (c *Client) GetFileSize(path string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sizeCmd(path)
}

// GetLastModificationTime returns the remote file's mtime via MDTM.
func (c *Client) GetLastModificationTime(path string) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mdtmCmd(path)
}

// SetModificationTime sets the remote file's mtime via MFMT.
func (c *Client) SetModificationTime(path string, t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mfmtCmd(path, t)
}

// Upload streams localPath's contents to target (or the local file's base
// name, if target is empty). onProgress, if non-nil, is invoked with the
// cumulative bytes sent and the local file's size (spec §6).
func (c *Client) Upload(localPath, target string, onProgress ProgressFunc) error {
	f, err := os.Open(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return newError(KindNotFound, "STOR", localPath, 0)
		}
		return wrapError(KindNetwork, err)
	}
	defer f.Close()

	remote := target
	if remote == "" {
		remote = filepath.Base(localPath)
	}

	var total int64
	if onProgress != nil {
		info, err := f.Stat()
		if err != nil {
			return wrapError(KindNetwork, err)
		}
		total = info.Size()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.storCmd(remote, f, func(current int64) {
		if onProgress != nil {
			onProgress(current, total)
		}
	})
}

// Download streams src into dst, refusing to overwrite an existing dst
// unless overwrite is true. onProgress, if non-nil, is invoked with the
// bytes moved so far and the server-reported size of src (spec §6).
func (c *Client) Download(src, dst string, overwrite bool, onProgress ProgressFunc) error {
	if !overwrite {
		if _, err := os.Stat(dst); err == nil {
			return newError(KindExists, "RETR", dst, 0)
		} else if !os.IsNotExist(err) {
			return wrapError(KindNetwork, err)
		}
	}

	c.mu.Lock()
	var total int64
	if onProgress != nil {
		if size, err := c.sizeCmd(src); err == nil {
			total = size
		}
	}
	c.mu.Unlock()

	f, err := os.Create(dst)
	if err != nil {
		return wrapError(KindNetwork, err)
	}
	defer f.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	var current int64
	err = c.retrCmd(src, f, func(n int64) {
		current += n
		if onProgress != nil {
			onProgress(current, total)
		}
	})
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}
