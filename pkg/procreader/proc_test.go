package procreader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeProc(t *testing.T, pid uint32) (*Reader, string) {
	t.Helper()
	root := t.TempDir()
	pidDir := filepath.Join(root, "42")
	require.NoError(t, os.MkdirAll(pidDir, 0o755))
	return &Reader{ProcRoot: root}, pidDir
}

func TestCmdlineDropsDigitsAndShortTokens(t *testing.T) {
	r, dir := newFakeProc(t, 42)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmdline"), []byte("gst-launch-1.0\x00--name=enc0\x0042\x00a\x00"), 0o600))

	got := r.Cmdline(42)
	assert.NotContains(t, got, "42")
	for _, tok := range got {
		assert.Greater(t, len(tok), 1)
	}
}

func TestCommTokensDropsShort(t *testing.T) {
	r, dir := newFakeProc(t, 42)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comm"), []byte("gst.launch.a\n"), 0o600))

	got := r.CommTokens(42)
	assert.Equal(t, []string{"gst", "launch"}, got)
}

func TestAliveReflectsProcDirPresence(t *testing.T) {
	r, _ := newFakeProc(t, 42)
	assert.True(t, r.Alive(42))
	assert.False(t, r.Alive(43))
}

func TestEnvironDropsDigitBearingAndSpecialOnlyTokens(t *testing.T) {
	r, dir := newFakeProc(t, 42)
	env := "PATH=/usr/bin\x00PORT=8080\x00===\x00HOME=/root\x00"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "environ"), []byte(env), 0o600))

	got := r.Environ(42)
	for _, tok := range got {
		assert.False(t, containsDigit(tok))
	}
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

func TestMissingProcessYieldsEmptyTokensNotError(t *testing.T) {
	r := &Reader{ProcRoot: t.TempDir()}
	assert.Empty(t, r.Attr(999))
	assert.Empty(t, r.Cgroup(999))
	assert.Empty(t, r.Cmdline(999))
	assert.Empty(t, r.CommTokens(999))
	assert.Empty(t, r.MapFiles(999))
	assert.Empty(t, r.FDs(999))
	assert.Empty(t, r.Environ(999))
	assert.Empty(t, r.Exe(999))
}
