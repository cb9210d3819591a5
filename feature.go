package ftp

import "strings"

// FeatureSet records which optional extensions the server advertised
// during login. It is populated once by the Feature Negotiator and is
// read-only afterwards (spec §3, §4.5).
type FeatureSet struct {
	MDTM bool
	SIZE bool
	MLST bool
	MLSD bool
	UTF8 bool
	MFMT bool
	EPSV bool

	// Raw holds each of the seven tracked tokens above that was found in the
	// FEAT body, keyed by the token. Other advertised extensions are not
	// recorded.
	Raw map[string]bool
}

// negotiateFeatures sends FEAT and scans the multi-line reply body for the
// known extension tokens. It requires a 211 reply; anything else is a
// KindProtocol error, per the command catalog (spec §4.6).
func negotiateFeatures(cc *controlChannel) (FeatureSet, error) {
	reply, err := cc.command("FEAT")
	if err != nil {
		return FeatureSet{}, err
	}
	if reply.Code != 211 {
		return FeatureSet{}, protocolErr("FEAT", reply)
	}

	fs := FeatureSet{Raw: make(map[string]bool)}
	for _, tok := range []string{"MDTM", "SIZE", "MLST", "MLSD", "UTF8", "MFMT", "EPSV"} {
		if strings.Contains(reply.Text, tok) {
			fs.Raw[tok] = true
		}
	}

	fs.MDTM = fs.Raw["MDTM"]
	fs.SIZE = fs.Raw["SIZE"]
	fs.MLST = fs.Raw["MLST"]
	fs.MLSD = fs.Raw["MLSD"]
	fs.UTF8 = fs.Raw["UTF8"]
	fs.MFMT = fs.Raw["MFMT"]
	fs.EPSV = fs.Raw["EPSV"]

	return fs, nil
}
