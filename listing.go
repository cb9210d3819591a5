package ftp

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind classifies a DirEntry (spec's listing parsers produce exactly these
// four; "unknown" is the fallback for a type this package doesn't recognize).
type Kind int

const (
	KindUnknownEntry Kind = iota
	KindFile
	KindDir
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// DirEntry is the parser-agnostic result of listing one directory entry,
// whether it arrived via MLSD or Unix LIST (spec §3, §4.7). Target is only
// populated for Unix LIST symlinks ("name -> target"); MLSD carries no
// target fact.
type DirEntry struct {
	Name   string
	Size   int64
	Modify time.Time
	Kind   Kind
	Target string

	// facts holds every raw MLSD fact key/value, lowercased, so
	// serializeMLSD can round-trip a parsed entry byte-for-byte on the facts
	// this package doesn't otherwise interpret.
	facts map[string]string
}

// parseListing dispatches to the MLSD or Unix LIST parser depending on
// which the caller negotiated, and filters out "." and ".." (spec §4.7).
func parseListing(data []byte, mlsd bool) []DirEntry {
	var entries []DirEntry
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		var entry *DirEntry
		if mlsd {
			entry = parseMLSDLine(line)
		} else {
			entry = parseUnixListLine(line)
		}
		if entry == nil {
			continue
		}
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries
}

// parseMLSDLine parses one "fact=value;fact=value;... name" line (spec
// §4.7). The last semicolon-delimited token is "<SP>name"; everything before
// it is folded into facts.
func parseMLSDLine(line string) *DirEntry {
	spaceIdx := strings.IndexByte(line, ' ')
	if spaceIdx == -1 {
		return nil
	}
	factsPart := line[:spaceIdx]
	name := line[spaceIdx+1:]
	if name == "" {
		return nil
	}

	facts := make(map[string]string)
	for _, pair := range strings.Split(factsPart, ";") {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		facts[strings.ToLower(key)] = value
	}

	entry := &DirEntry{Name: name, facts: facts}

	switch strings.ToLower(facts["type"]) {
	case "file":
		entry.Kind = KindFile
	case "dir", "cdir", "pdir":
		entry.Kind = KindDir
	default:
		entry.Kind = KindUnknownEntry
	}

	if sizeStr, ok := facts["size"]; ok {
		if size, err := strconv.ParseInt(sizeStr, 10, 64); err == nil {
			entry.Size = size
		}
	}

	if modifyStr, ok := facts["modify"]; ok {
		timestamp := strings.SplitN(modifyStr, ".", 2)[0]
		if t, err := time.Parse("20060102150405", timestamp); err == nil {
			entry.Modify = t.UTC()
		}
	}

	return entry
}

// serializeMLSD re-renders a DirEntry parsed from MLSD back into its
// facts-then-name textual form. Re-parsing the output must yield an equal
// entry, which is the round-trip idempotency this package guarantees for
// MLSD-sourced entries.
func serializeMLSD(e DirEntry) string {
	facts := make(map[string]string, len(e.facts))
	for k, v := range e.facts {
		facts[k] = v
	}
	if _, ok := facts["type"]; !ok {
		facts["type"] = e.Kind.String()
	}
	if _, ok := facts["size"]; !ok {
		facts["size"] = strconv.FormatInt(e.Size, 10)
	}
	if _, ok := facts["modify"]; !ok && !e.Modify.IsZero() {
		facts["modify"] = e.Modify.UTC().Format("20060102150405")
	}

	var b strings.Builder
	for _, key := range []string{"type", "size", "modify"} {
		if v, ok := facts[key]; ok {
			fmt.Fprintf(&b, "%s=%s;", key, v)
			delete(facts, key)
		}
	}
	for k, v := range facts {
		fmt.Fprintf(&b, "%s=%s;", k, v)
	}
	b.WriteByte(' ')
	b.WriteString(e.Name)
	return b.String()
}

// unixTypeChars are the type characters the Unix LIST parser recognizes in
// field position 0 (spec §4.7): "bcdelfmpSs-".
const unixTypeChars = "bcdelfmpSs-"

// parseUnixListLine parses one "ls -l"-style line. It requires at least the
// permission field, link count, owner, group-or-size, size, three date/time
// fields, and a name — the classic 8- or 9-field Unix layout.
func parseUnixListLine(line string) *DirEntry {
	fields := strings.Fields(line)
	if len(fields) < 8 {
		return nil
	}

	perms := fields[0]
	if len(perms) == 0 || !strings.ContainsRune(unixTypeChars, rune(perms[0])) {
		return nil
	}

	entry := &DirEntry{}
	switch perms[0] {
	case 'd':
		entry.Kind = KindDir
	case 'e', 'l':
		entry.Kind = KindSymlink
	case 'b', 'f', '-':
		entry.Kind = KindFile
	default:
		entry.Kind = KindUnknownEntry
	}

	// Try the 9-field layout (perms links owner group size mon day time name)
	// before falling back to the 8-field layout that omits the group column.
	var sizeIdx, nameStart int
	if len(fields) >= 9 {
		if _, err := strconv.ParseInt(fields[4], 10, 64); err == nil {
			sizeIdx, nameStart = 4, 8
		} else if _, err := strconv.ParseInt(fields[3], 10, 64); err == nil {
			sizeIdx, nameStart = 3, 7
		} else {
			return nil
		}
	} else {
		if _, err := strconv.ParseInt(fields[3], 10, 64); err != nil {
			return nil
		}
		sizeIdx, nameStart = 3, 7
	}

	size, err := strconv.ParseInt(fields[sizeIdx], 10, 64)
	if err != nil {
		return nil
	}
	entry.Size = size

	if nameStart >= len(fields) {
		return nil
	}
	full := strings.Join(fields[nameStart:], " ")

	if entry.Kind == KindSymlink {
		if before, after, ok := strings.Cut(full, " -> "); ok {
			entry.Name = before
			entry.Target = after
		} else {
			entry.Name = full
		}
	} else {
		entry.Name = full
	}

	return entry
}
