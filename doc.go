// Package ftp implements a plain-FTP client speaking RFC 959 plus the
// EPSV, FEAT, MLSD/MLST, MDTM, MFMT, SIZE, UTF8, and OPTS extensions.
//
// # Overview
//
// The Client type offers directory navigation, file and directory
// listing, upload/download with progress, rename, recursive delete, and
// size/modification-time queries, backed by a persistent control channel
// and short-lived passive-mode data channels.
//
// TLS/FTPS, active mode, IPv6 EPRT, REST/resume, and ABOR are out of
// scope; every data connection is negotiated with EPSV.
//
// # Basic usage
//
//	client, err := ftp.Connect(ftp.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	entries, err := client.GetFiles("/pub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, e := range entries {
//	    fmt.Printf("%s: %d bytes\n", e.Name, e.Size)
//	}
//
// # File transfers
//
//	err := client.Upload("local.txt", "remote.txt", func(current, total int64) {
//	    fmt.Printf("sent %d/%d\n", current, total)
//	})
//
//	err = client.Download("remote.txt", "local.txt", false, nil)
//
// # Error handling
//
// Every operation returns *ftp.Error, which carries a Kind
// (ftp.KindNotFound, ftp.KindAuth, ftp.KindProtocol, ...) for
// programmatic branching:
//
//	if err := client.DeleteFile("missing.txt"); err != nil {
//	    if errors.Is(err, &ftp.Error{Kind: ftp.KindNotFound}) {
//	        // already gone
//	    }
//	}
package ftp
