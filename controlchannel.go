package ftp

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

// controlChannel owns the control-connection socket end to end: the raw
// net.Conn, the buffered reader that feeds the reply parser, and the
// serialization that guarantees at most one command is ever in flight
// (spec §3, §4.2). A terminal I/O error marks the channel destroyed; every
// call after that fails fast with KindNetwork.
type controlChannel struct {
	mu      sync.Mutex
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
	logger  *slog.Logger
	metrics *Metrics

	writeCount int64
	closed     bool
}

func newControlChannel(conn net.Conn, timeout time.Duration, logger *slog.Logger, metrics *Metrics) *controlChannel {
	return &controlChannel{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// sendLine writes s+CRLF to the socket and returns the number of bytes
// written. It fails with KindNetwork if the channel is closed or the
// kernel refuses to accept the full write.
func (cc *controlChannel) sendLine(s string) (int, error) {
	if cc.closed {
		return 0, wrapError(KindNetwork, fmt.Errorf("control channel closed"))
	}

	if cc.timeout > 0 {
		if err := cc.conn.SetWriteDeadline(time.Now().Add(cc.timeout)); err != nil {
			cc.fail()
			return 0, wrapError(KindNetwork, err)
		}
	}

	payload := s + "\r\n"
	n, err := fmt.Fprint(cc.conn, payload)
	if err != nil {
		cc.fail()
		return n, wrapError(KindNetwork, err)
	}
	if n != len(payload) {
		cc.fail()
		return n, wrapError(KindNetwork, fmt.Errorf("short write: wrote %d of %d bytes", n, len(payload)))
	}

	cc.writeCount++
	return n, nil
}

// recvReply blocks for the next complete reply, bounded by the configured
// timeout. A timed-out or errored read is treated conservatively: the
// channel is torn down rather than left in an ambiguous state (spec §5).
func (cc *controlChannel) recvReply() (*Reply, error) {
	if cc.closed {
		return nil, wrapError(KindNetwork, fmt.Errorf("control channel closed"))
	}

	if cc.timeout > 0 {
		if err := cc.conn.SetReadDeadline(time.Now().Add(cc.timeout)); err != nil {
			cc.fail()
			return nil, wrapError(KindNetwork, err)
		}
	}

	reply, err := readReply(cc.reader)
	if err != nil {
		cc.fail()
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, wrapError(KindTimeout, err)
		}
		return nil, wrapError(KindNetwork, err)
	}

	return reply, nil
}

// command sends cmd (with its arguments joined by a single space) and
// returns the reply that follows. It holds the channel lock for the whole
// round trip, which is what enforces the "at most one in-flight command"
// invariant.
func (cc *controlChannel) command(cmd string, args ...string) (*Reply, error) {
	line := cmd
	if len(args) > 0 {
		line = cmd + " " + strings.Join(args, " ")
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.logger != nil {
		cc.logger.Debug("ftp command", "line", line)
	}

	if _, err := cc.sendLine(line); err != nil {
		return nil, err
	}
	cc.metrics.observeCommand()

	reply, err := cc.recvReply()
	if err != nil {
		return nil, err
	}
	cc.metrics.observeReply(reply.Code)

	if cc.logger != nil {
		cc.logger.Debug("ftp reply", "code", reply.Code, "text", reply.Text)
	}

	return reply, nil
}

// fail marks the channel unusable and releases the socket. Idempotent.
func (cc *controlChannel) fail() {
	if cc.closed {
		return
	}
	cc.closed = true
	_ = cc.conn.Close()
}

// close sends nothing; it just releases the socket. Idempotent.
func (cc *controlChannel) close() error {
	if cc.closed {
		return nil
	}
	cc.closed = true
	return cc.conn.Close()
}
