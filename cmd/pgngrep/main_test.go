package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	j1939 "github.com/truckbus/go-j1939-candump"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(wd))
	})
	return dir
}

func TestResolveArgsFromPositionalArguments(t *testing.T) {
	chdirTemp(t)

	path, filter, err := resolveArgs("", []string{"dump.log", "8192", "60928"}, strings.NewReader(""))

	assert.NoError(t, err)
	assert.Equal(t, "dump.log", path)
	assert.Equal(t, []uint32{8192, 60928}, filter.PGNs())
}

func TestResolveArgsPathOnlyMeansNoFiltering(t *testing.T) {
	chdirTemp(t)

	path, filter, err := resolveArgs("", []string{"dump.log"}, strings.NewReader(""))

	assert.NoError(t, err)
	assert.Equal(t, "dump.log", path)
	assert.True(t, filter.Match(65226))
}

// positional arguments win over a conf file present in the working directory
func TestResolveArgsArgumentsWinOverDefaultConfFile(t *testing.T) {
	dir := chdirTemp(t)
	conf := `{"path": "conf.log", "pgns": ["60928"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, defaultConfigName), []byte(conf), 0o600))

	path, filter, err := resolveArgs("", []string{"args.log", "8192"}, strings.NewReader(""))

	assert.NoError(t, err)
	assert.Equal(t, "args.log", path)
	assert.Equal(t, []uint32{8192}, filter.PGNs())
}

func TestResolveArgsDefaultConfFileWhenNoArguments(t *testing.T) {
	dir := chdirTemp(t)
	conf := `{"path": "conf.log", "pgns": ["60928"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, defaultConfigName), []byte(conf), 0o600))

	path, filter, err := resolveArgs("", nil, strings.NewReader(""))

	assert.NoError(t, err)
	assert.Equal(t, "conf.log", path)
	assert.Equal(t, []uint32{60928}, filter.PGNs())
}

func TestResolveArgsExplicitConfigWinsOverArguments(t *testing.T) {
	dir := chdirTemp(t)
	confPath := filepath.Join(dir, "mine.conf")
	require.NoError(t, os.WriteFile(confPath, []byte(`{"path": "conf.log", "pgns": [8192]}`), 0o600))

	path, filter, err := resolveArgs(confPath, []string{"args.log", "60928"}, strings.NewReader(""))

	assert.NoError(t, err)
	assert.Equal(t, "conf.log", path)
	assert.Equal(t, []uint32{8192}, filter.PGNs())
}

func TestResolveArgsInteractive(t *testing.T) {
	chdirTemp(t)
	stdin := strings.NewReader("typed.log\n8192 60928\n")

	path, filter, err := resolveArgs("", nil, stdin)

	assert.NoError(t, err)
	assert.Equal(t, "typed.log", path)
	assert.Equal(t, []uint32{8192, 60928}, filter.PGNs())
}

func TestResolveArgsInvalidPGNArgument(t *testing.T) {
	chdirTemp(t)

	_, _, err := resolveArgs("", []string{"dump.log", "not-a-pgn"}, strings.NewReader(""))

	assert.EqualError(t, err, `invalid PGN "not-a-pgn", err: strconv.ParseUint: parsing "not-a-pgn": invalid syntax`)
}

func TestGrep(t *testing.T) {
	log := strings.Join([]string{
		"(1553794338.000001) vcan0 0C20130B#FCFFFA77FFFFFFFF",
		"not a candump line",
		"(1553794338.000002) vcan0 18FECA00#FFFF00000000FFFF",
		"(1553794338.000003) vcan0 0C20130B#FCFFFA77FFFFFFFF",
	}, "\n")

	out := strings.Builder{}
	err := grep(strings.NewReader(log), &out, j1939.NewPGNFilter(8192))

	assert.NoError(t, err)
	expect := "(1553794338.000001) vcan0 0C20130B#FCFFFA77FFFFFFFF\n" +
		"(1553794338.000003) vcan0 0C20130B#FCFFFA77FFFFFFFF\n"
	assert.Equal(t, expect, out.String())
}
