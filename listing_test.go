package ftp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListing_MLSD(t *testing.T) {
	data := []byte("type=file;modify=20180608233854;size=419616; steam.dll\r\n" +
		"type=dir;modify=20180702203936; steamapps\r\n")

	entries := parseListing(data, true)
	require.Len(t, entries, 2)

	assert.Equal(t, "steam.dll", entries[0].Name)
	assert.Equal(t, KindFile, entries[0].Kind)
	assert.EqualValues(t, 419616, entries[0].Size)
	assert.Equal(t, time.Date(2018, 6, 8, 23, 38, 54, 0, time.UTC), entries[0].Modify)

	assert.Equal(t, "steamapps", entries[1].Name)
	assert.Equal(t, KindDir, entries[1].Kind)
}

func TestParseListing_MLSD_SkipsDotEntries(t *testing.T) {
	data := []byte("type=cdir;modify=20180608233854; .\r\ntype=pdir;modify=20180608233854; ..\r\ntype=file;size=1; a.txt\r\n")
	entries := parseListing(data, true)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name)
}

func TestParseListing_Empty(t *testing.T) {
	entries := parseListing([]byte(""), true)
	assert.Empty(t, entries)
}

func TestSerializeMLSD_RoundTrip(t *testing.T) {
	line := "type=file;size=419616;modify=20180608233854; steam.dll"
	parsed := parseMLSDLine(line)
	require.NotNil(t, parsed)

	rendered := serializeMLSD(*parsed)
	reparsed := parseMLSDLine(rendered)
	require.NotNil(t, reparsed)

	assert.Equal(t, parsed.Name, reparsed.Name)
	assert.Equal(t, parsed.Size, reparsed.Size)
	assert.Equal(t, parsed.Kind, reparsed.Kind)
	assert.Equal(t, parsed.Modify, reparsed.Modify)
}

func TestParseUnixListLine_9Field(t *testing.T) {
	line := "drwxr-xr-x  2 root root  4096 Jun  8 23:38 steamapps"
	entry := parseUnixListLine(line)
	require.NotNil(t, entry)
	assert.Equal(t, KindDir, entry.Kind)
	assert.Equal(t, "steamapps", entry.Name)
	assert.EqualValues(t, 4096, entry.Size)
}

func TestParseUnixListLine_Symlink(t *testing.T) {
	line := "lrwxrwxrwx  1 root root    7 Jun  8 23:38 current -> release"
	entry := parseUnixListLine(line)
	require.NotNil(t, entry)
	assert.Equal(t, KindSymlink, entry.Kind)
	assert.Equal(t, "current", entry.Name)
	assert.Equal(t, "release", entry.Target)
}

func TestParseUnixListLine_8Field(t *testing.T) {
	line := "-rw-r--r--  1 ftp 4096 Jun  8 23:38 steam.dll"
	entry := parseUnixListLine(line)
	require.NotNil(t, entry)
	assert.Equal(t, KindFile, entry.Kind)
	assert.Equal(t, "steam.dll", entry.Name)
}

func TestParseUnixListLine_TooShort(t *testing.T) {
	assert.Nil(t, parseUnixListLine("not enough fields"))
}
