package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"horizonx-sampler/internal/domain"
)

func writeProc(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	fsys := fstest.MapFS{
		"stat": {Data: []byte("cpu  10 11 12 13 14 15 16 17 18 19\n")},
		"meminfo": {Data: []byte("MemTotal: 20 kB\nMemFree: 21 kB\nMemAvailable: 22 kB\n" +
			"Buffers: 23 kB\nCached: 24 kB\nSwapTotal: 25 kB\nSwapFree: 26 kB\n")},
		"net/dev": {Data: []byte("Inter-| Receive | Transmit\n face |bytes packets|bytes packets\n" +
			"eth0: 30 31 32 33 34 35 36 37 38 39 40 41 42 43 44 45\n")},
		"diskstats": {Data: []byte("8 0 sda 50 51 52 53 54 55 56 57 58 59 60\n")},
	}
	require.NoError(t, os.CopyFS(dir, fsys))
	return dir
}

func isolateEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{"SCRAPE_INTERVAL", "PROC_ROOT", "SINKS", "HOST_ID", "LOG_LEVEL", "RETENTION", "JWT_SECRET"} {
		t.Setenv(key, "")
	}
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewCommand()
	cmd.Writer = &out

	err := cmd.Run(context.Background(), append([]string{name}, args...))
	return out.String(), err
}

func TestSnapshotCmd_JSON(t *testing.T) {
	isolateEnv(t)
	t.Setenv("HOST_ID", "4a5c1e7e-0f7b-4c2d-9e61-2b1a3c4d5e6f")

	out, err := run(t, "--proc-root", writeProc(t), "snapshot")
	require.NoError(t, err)

	var s domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "4a5c1e7e-0f7b-4c2d-9e61-2b1a3c4d5e6f", s.HostID.String())
	assert.Equal(t, uint64(10), s.CPU.User)
	assert.Equal(t, uint64(26), s.Memory.SwapFree)
	assert.Equal(t, "eth0", s.Network[0].Name)
	assert.Equal(t, "sda", s.Disk[0].DeviceName)
	assert.False(t, s.RecordedAt.IsZero())
}

func TestSnapshotCmd_YAML(t *testing.T) {
	isolateEnv(t)

	out, err := run(t, "--proc-root", writeProc(t), "snapshot", "--format", "yaml")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "cpu_stats:"))

	var s domain.Snapshot
	require.NoError(t, yaml.Unmarshal([]byte(out), &s))
	assert.Equal(t, uint64(13), s.CPU.Idle)
}

func TestSnapshotCmd_Errors(t *testing.T) {
	isolateEnv(t)

	_, err := run(t, "--proc-root", filepath.Join(t.TempDir(), "missing"), "snapshot")
	assert.ErrorIs(t, err, domain.ErrUnreadable)

	_, err = run(t, "--proc-root", writeProc(t), "snapshot", "--format", "xml")
	assert.Error(t, err)

	_, err = run(t, "--interval", "0s", "snapshot")
	assert.Error(t, err)
}

func TestTokenCmd(t *testing.T) {
	isolateEnv(t)

	_, err := run(t, "token")
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	out, err := run(t, "token", "--subject", "grafana")
	require.NoError(t, err)

	claims, err := domain.ValidateToken(strings.TrimSpace(out), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "grafana", claims["sub"])
}

func TestNewCommand_Structure(t *testing.T) {
	cmd := NewCommand()

	var names []string
	for _, c := range cmd.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"serve", "stream", "snapshot", "token"}, names)
}
