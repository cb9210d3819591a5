package ftp

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// login performs the handshake in §4.6: greeting already consumed by
// Connect, then USER/PASS, FEAT, OPTS UTF8 ON when advertised, and TYPE I.
func (c *Client) login(username, password string) error {
	reply, err := c.cc.command("USER", username)
	if err != nil {
		return err
	}
	if reply.Code == 230 {
		// server allows anonymous login without a password
	} else if reply.Code != 331 {
		return protocolErr("USER", reply)
	} else {
		reply, err = c.cc.command("PASS", password)
		if err != nil {
			return err
		}
		if reply.Code == 530 {
			return newError(KindAuth, "PASS", reply.Text, reply.Code)
		}
		if reply.Code != 230 {
			return protocolErr("PASS", reply)
		}
	}

	features, err := negotiateFeatures(c.cc)
	if err != nil {
		return err
	}
	c.features = features

	if c.features.UTF8 {
		reply, err = c.cc.command("OPTS", "UTF8", "ON")
		if err != nil {
			return err
		}
		if !reply.Is2xx() {
			return protocolErr("OPTS", reply)
		}
	}

	return c.typeCmd("I")
}

func (c *Client) typeCmd(t string) error {
	reply, err := c.cc.command("TYPE", t)
	if err != nil {
		return err
	}
	if reply.Code != 200 {
		return protocolErr("TYPE", reply)
	}
	return nil
}

// pwd parses the quoted path out of a 257 reply.
func (c *Client) pwd() (string, error) {
	reply, err := c.cc.command("PWD")
	if err != nil {
		return "", err
	}
	if reply.Is5xx() || reply.Is4xx() {
		return "", protocolErr("PWD", reply)
	}

	start := strings.IndexByte(reply.Text, '"')
	if start == -1 {
		return "", wrapError(KindProtocol, fmt.Errorf("ftp: malformed PWD reply: %q", reply.Text))
	}
	end := strings.IndexByte(reply.Text[start+1:], '"')
	if end == -1 {
		return "", wrapError(KindProtocol, fmt.Errorf("ftp: malformed PWD reply: %q", reply.Text))
	}
	return reply.Text[start+1 : start+1+end], nil
}

// cwd reports true (<300) or false (>=300); it is not itself an error per
// §4.6, which is what makes it usable as an existence probe.
func (c *Client) cwd(path string) (bool, error) {
	reply, err := c.cc.command("CWD", path)
	if err != nil {
		return false, err
	}
	return reply.Code < 300, nil
}

func (c *Client) cdup() error {
	reply, err := c.cc.command("CDUP")
	if err != nil {
		return err
	}
	if reply.Code >= 400 {
		return protocolErr("CDUP", reply)
	}
	return nil
}

func (c *Client) quitCmd() error {
	reply, err := c.cc.command("QUIT")
	if err != nil {
		return err
	}
	if reply.Code != 221 {
		return protocolErr("QUIT", reply)
	}
	return nil
}

func (c *Client) sizeCmd(path string) (int64, error) {
	if !c.features.SIZE {
		return 0, newError(KindFeatureMissing, "SIZE", "", 0)
	}
	reply, err := c.cc.command("SIZE", path)
	if err != nil {
		return 0, err
	}
	if reply.Code != 213 {
		return 0, protocolErr("SIZE", reply)
	}
	size, err := strconv.ParseInt(strings.TrimSpace(reply.Text), 10, 64)
	if err != nil {
		return 0, wrapError(KindProtocol, fmt.Errorf("ftp: invalid SIZE reply: %q", reply.Text))
	}
	return size, nil
}

func (c *Client) mdtmCmd(path string) (time.Time, error) {
	if !c.features.MDTM {
		return time.Time{}, newError(KindFeatureMissing, "MDTM", "", 0)
	}
	reply, err := c.cc.command("MDTM", path)
	if err != nil {
		return time.Time{}, err
	}
	if reply.Code != 213 {
		return time.Time{}, protocolErr("MDTM", reply)
	}
	stamp := strings.TrimSpace(reply.Text)
	t, err := time.Parse("20060102150405", stamp)
	if err != nil {
		return time.Time{}, wrapError(KindProtocol, fmt.Errorf("ftp: invalid MDTM reply: %q", reply.Text))
	}
	return t.UTC(), nil
}

// mfmtCmd gates on FEAT.MFMT. The base spec's source gated on MDTM (its own
// documented bug); the redesign flag in spec §9 directs implementations to
// gate on MFMT instead.
func (c *Client) mfmtCmd(path string, t time.Time) error {
	if !c.features.MFMT {
		return newError(KindFeatureMissing, "MFMT", "", 0)
	}
	stamp := t.UTC().Format("20060102150405")
	reply, err := c.cc.command("MFMT", stamp, path)
	if err != nil {
		return err
	}
	if reply.Code != 213 {
		return protocolErr("MFMT", reply)
	}
	return nil
}

func (c *Client) deleCmd(path string) error {
	reply, err := c.cc.command("DELE", path)
	if err != nil {
		return err
	}
	if reply.Code == 550 {
		return newError(KindNotFound, "DELE", reply.Text, reply.Code)
	}
	if reply.Code != 250 {
		return protocolErr("DELE", reply)
	}
	return nil
}

func (c *Client) renameCmd(from, to string) error {
	if from == "" || to == "" {
		return newError(KindArgument, "RENAME", "", 0)
	}

	reply, err := c.cc.command("RNFR", from)
	if err != nil {
		return err
	}
	if reply.Code == 550 {
		return newError(KindNotFound, "RNFR", reply.Text, reply.Code)
	}
	if reply.Code != 350 {
		return protocolErr("RNFR", reply)
	}

	reply, err = c.cc.command("RNTO", to)
	if err != nil {
		return err
	}
	if reply.Code != 250 {
		return protocolErr("RNTO", reply)
	}
	return nil
}

// listingPath builds the argument for LIST/MLSD/NLST per §4.6: no argument
// at all when path is empty or whitespace, so the server lists CWD.
func listingPath(path string) []string {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return []string{path}
}

func (c *Client) openDataChannel() (*dataChannel, error) {
	dc, err := openPassiveDataChannel(c.cc, c.config.Host, c.dialer, c.config.Timeout, c.limiter)
	if err != nil {
		return nil, err
	}
	c.metrics.observeDataChannelOpen()
	return dc, nil
}

// listCmd runs LIST or MLSD (whichever FEAT advertised) and awaits the
// final transfer-completion reply on the control channel.
func (c *Client) listCmd(path string) ([]DirEntry, error) {
	dc, err := c.openDataChannel()
	if err != nil {
		return nil, err
	}

	cmd := "LIST"
	if c.features.MLSD {
		cmd = "MLSD"
	}

	reply, err := c.cc.command(cmd, listingPath(path)...)
	if err != nil {
		dc.close()
		return nil, err
	}
	if !reply.Is1xx() {
		dc.close()
		return nil, protocolErr(cmd, reply)
	}

	data, err := dc.readToEnd()
	dc.close()
	if err != nil {
		return nil, err
	}

	final, err := c.cc.recvReply()
	if err != nil {
		return nil, err
	}
	if final.Code >= 400 {
		return nil, protocolErr(cmd, final)
	}

	return parseListing(data, cmd == "MLSD"), nil
}

func (c *Client) nlstCmd(path string) ([]string, error) {
	dc, err := c.openDataChannel()
	if err != nil {
		return nil, err
	}

	reply, err := c.cc.command("NLST", listingPath(path)...)
	if err != nil {
		dc.close()
		return nil, err
	}
	if !reply.Is1xx() {
		dc.close()
		return nil, protocolErr("NLST", reply)
	}

	data, err := dc.readToEnd()
	dc.close()
	if err != nil {
		return nil, err
	}

	final, err := c.cc.recvReply()
	if err != nil {
		return nil, err
	}
	if final.Code >= 400 {
		return nil, protocolErr("NLST", final)
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		name := strings.TrimSpace(strings.TrimRight(line, "\r"))
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// storCmd uploads r's contents to remotePath, streaming through the data
// channel and awaiting the transfer-completion reply, per §4.6.
func (c *Client) storCmd(remotePath string, r io.Reader, onTotal func(int64)) error {
	dc, err := c.openDataChannel()
	if err != nil {
		return err
	}

	reply, err := c.cc.command("STOR", remotePath)
	if err != nil {
		dc.close()
		return err
	}
	if !reply.Is1xx() {
		dc.close()
		return protocolErr("STOR", reply)
	}

	var lastTotal int64
	uploadErr := dc.uploadFrom(r, func(total int64) {
		c.metrics.observeBytes("upload", total-lastTotal)
		lastTotal = total
		if onTotal != nil {
			onTotal(total)
		}
	})
	dc.close()
	if uploadErr != nil {
		return uploadErr
	}

	final, err := c.cc.recvReply()
	if err != nil {
		return err
	}
	if final.Code >= 400 {
		return protocolErr("STOR", final)
	}
	return nil
}

// retrCmd downloads remotePath into w, per §4.6.
func (c *Client) retrCmd(remotePath string, w io.Writer, onChunk func(int64)) error {
	dc, err := c.openDataChannel()
	if err != nil {
		return err
	}

	reply, err := c.cc.command("RETR", remotePath)
	if err != nil {
		dc.close()
		return err
	}
	if !reply.Is1xx() {
		dc.close()
		return protocolErr("RETR", reply)
	}

	downloadErr := dc.downloadTo(w, func(n int64) {
		c.metrics.observeBytes("download", n)
		if onChunk != nil {
			onChunk(n)
		}
	})
	dc.close()
	if downloadErr != nil {
		return downloadErr
	}

	final, err := c.cc.recvReply()
	if err != nil {
		return err
	}
	if final.Code >= 400 {
		return protocolErr("RETR", final)
	}
	return nil
}

// mkdRecursive implements §4.6.1: reposition to "/", then walk each path
// segment, CWD-ing into it if it exists and MKD-then-CWD if it doesn't.
func (c *Client) mkdRecursive(path string) error {
	if strings.TrimSpace(path) == "" {
		return newError(KindArgument, "MKD", "", 0)
	}

	if ok, err := c.cwd("/"); err != nil {
		return err
	} else if !ok {
		return newError(KindProtocol, "CWD", "/", 0)
	}

	prefix := ""
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		prefix += "/" + segment

		ok, err := c.cwd(prefix)
		if err != nil {
			return err
		}
		if ok {
			continue
		}

		reply, err := c.cc.command("MKD", segment)
		if err != nil {
			return err
		}
		if reply.Code != 257 {
			return protocolErr("MKD", reply)
		}

		ok, err = c.cwd(prefix)
		if err != nil {
			return err
		}
		if !ok {
			return newError(KindProtocol, "CWD", prefix, 0)
		}
	}

	return nil
}

// rmdRecursive implements §4.6.2: save CWD, descend into path, delete every
// file, recurse into every subdirectory, then remove path itself and
// restore the original working directory.
func (c *Client) rmdRecursive(path string) error {
	saved, err := c.pwd()
	if err != nil {
		return err
	}

	ok, err := c.cwd(path)
	if err != nil {
		return err
	}
	if !ok {
		return newError(KindNotFound, "CWD", path, 0)
	}

	entries, err := c.listCmd("")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		switch entry.Kind {
		case KindFile:
			if err := c.deleCmd(entry.Name); err != nil {
				return err
			}
		case KindDir:
			if err := c.rmdRecursive(entry.Name); err != nil {
				return err
			}
		}
	}

	if err := c.cdup(); err != nil {
		return err
	}

	reply, err := c.cc.command("RMD", path)
	if err != nil {
		return err
	}
	if reply.Code != 250 {
		return protocolErr("RMD", reply)
	}

	if _, err := c.cwd(saved); err != nil {
		return err
	}
	return nil
}

// directoryExists implements §4.6.3: save CWD, attempt CWD path, restore
// unconditionally, and answer with the CWD outcome.
func (c *Client) directoryExists(path string) (bool, error) {
	saved, err := c.pwd()
	if err != nil {
		return false, err
	}

	ok, cwdErr := c.cwd(path)

	if _, restoreErr := c.cwd(saved); restoreErr != nil && cwdErr == nil {
		return false, restoreErr
	}

	if cwdErr != nil {
		return false, cwdErr
	}
	return ok, nil
}

// fileExists implements §4.6.4: SIZE succeeds → true, NotFound → false,
// anything else propagates.
func (c *Client) fileExists(path string) (bool, error) {
	_, err := c.sizeCmd(path)
	if err == nil {
		return true, nil
	}
	var ferr *Error
	if isErrorKind(err, KindNotFound, &ferr) {
		return false, nil
	}
	return false, err
}

// isErrorKind reports whether err is an *Error of kind k, populating out.
func isErrorKind(err error, k ErrorKind, out **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*out = e
	return e.Kind == k
}
