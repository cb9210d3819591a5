package ftp

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/wrenfield/ftpclient/internal/ratelimit"
)

// epsvPortRegex matches the extended-passive reply format:
// "229 Entering Extended Passive Mode (|||PORT|)". Per spec §4.4 the
// parser extracts the first decimal digit run, which by construction is
// the port.
var epsvPortRegex = regexp.MustCompile(`\d+`)

// parseEPSVPort extracts the port number from an EPSV reply's text.
func parseEPSVPort(text string) (int, error) {
	match := epsvPortRegex.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("ftp: no port found in EPSV reply: %q", text)
	}
	port, err := strconv.Atoi(match)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("ftp: invalid EPSV port %q", match)
	}
	return port, nil
}

// dataChannel is a short-lived, single-use TCP connection opened for one
// transfer or one directory listing (spec §3, §4.3). Every exit path
// (success, error, or cancellation) must leave the socket closed; callers
// funnel through close to guarantee that.
type dataChannel struct {
	conn    net.Conn
	timeout time.Duration
	limiter *ratelimit.Limiter
}

// downloadTo streams every byte received on the channel into w, invoking
// onChunk with the number of bytes landed by each read (spec §4.3:
// "on_progress(bytes_in_this_chunk)"). It returns when the peer closes the
// connection (EOF) or an I/O error occurs on either side.
func (dc *dataChannel) downloadTo(w io.Writer, onChunk func(n int64)) error {
	buf := make([]byte, 32*1024)
	src := ratelimit.NewReader(dc.conn, dc.limiter)
	for {
		if dc.timeout > 0 {
			if err := dc.conn.SetReadDeadline(time.Now().Add(dc.timeout)); err != nil {
				return wrapError(KindNetwork, err)
			}
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return wrapError(KindNetwork, werr)
			}
			if onChunk != nil {
				onChunk(int64(n))
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				return nil
			}
			return wrapError(KindNetwork, rerr)
		}
	}
}

// uploadFrom streams the contents of r to the channel, invoking onTotal
// with the cumulative number of bytes sent so far after each chunk (spec
// §4.3: "on_progress(total_bytes_sent_so_far)"). The socket's own close,
// performed by the caller once EOF of r is reached, is how the server
// learns the transfer is complete.
func (dc *dataChannel) uploadFrom(r io.Reader, onTotal func(total int64)) error {
	dst := ratelimit.NewWriter(dc.conn, dc.limiter)
	buf := make([]byte, 32*1024)
	var total int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if dc.timeout > 0 {
				if err := dc.conn.SetWriteDeadline(time.Now().Add(dc.timeout)); err != nil {
					return wrapError(KindNetwork, err)
				}
			}
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return wrapError(KindNetwork, werr)
			}
			total += int64(n)
			if onTotal != nil {
				onTotal(total)
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				return nil
			}
			return wrapError(KindNetwork, rerr)
		}
	}
}

// readToEnd collects every byte received until the peer closes the
// connection, growing the buffer geometrically. Used for LIST/MLSD.
func (dc *dataChannel) readToEnd() ([]byte, error) {
	var buf bytes.Buffer
	if dc.timeout > 0 {
		if err := dc.conn.SetReadDeadline(time.Now().Add(dc.timeout)); err != nil {
			return nil, wrapError(KindNetwork, err)
		}
	}
	if _, err := io.Copy(&buf, dc.conn); err != nil {
		return nil, wrapError(KindNetwork, err)
	}
	return buf.Bytes(), nil
}

// close releases the socket. Safe to call more than once.
func (dc *dataChannel) close() error {
	if dc.conn == nil {
		return nil
	}
	err := dc.conn.Close()
	dc.conn = nil
	return err
}

// openPassiveDataChannel negotiates a data connection using EPSV, per the
// Passive-Mode Negotiator (spec §4.4). It always tries EPSV, even if the
// server didn't advertise it in FEAT, since many servers support it
// without advertising it. Any failure to establish the connection also
// closes whatever socket was half-opened.
func openPassiveDataChannel(cc *controlChannel, host string, dialer *net.Dialer, timeout time.Duration, limiter *ratelimit.Limiter) (*dataChannel, error) {
	reply, err := cc.command("EPSV")
	if err != nil {
		return nil, err
	}
	if !reply.Is2xx() {
		return nil, protocolErr("EPSV", reply)
	}

	port, err := parseEPSVPort(reply.Text)
	if err != nil {
		return nil, wrapError(KindProtocol, err)
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, wrapError(KindNetwork, err)
	}

	return &dataChannel{conn: conn, timeout: timeout, limiter: limiter}, nil
}
