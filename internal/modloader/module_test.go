package modloader

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPE64Fixture writes a minimal valid PE32+ file whose optional header
// reports sizeOfImage, for exercising the fallback loader end to end.
func buildPE64Fixture(t *testing.T, sizeOfImage uint32) string {
	t.Helper()

	buf := make([]byte, 200)
	binary.LittleEndian.PutUint16(buf[0:2], 0x5A4D)
	binary.LittleEndian.PutUint32(buf[60:64], 64)
	binary.LittleEndian.PutUint32(buf[64:68], 0x00004550)
	binary.LittleEndian.PutUint16(buf[88:90], 0x20b) // PE32+ magic at optOffset=88 (elfanew 64 + NT sig 4 + file header 20)
	binary.LittleEndian.PutUint32(buf[88+0x38:88+0x38+4], sizeOfImage)

	path := filepath.Join(t.TempDir(), "Game.dll")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestLoad_MissingFileReturnsFileNotFoundError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.dll"))
	var notFound *FileNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestModule_ContainsAndRVA(t *testing.T) {
	m := &Module{Base: 0x1000, Size: 0x100}

	assert.True(t, m.Contains(0x1000))
	assert.True(t, m.Contains(0x10ff))
	assert.False(t, m.Contains(0x1100))
	assert.False(t, m.Contains(0x0fff))

	assert.Equal(t, uint64(0x50), m.RVA(0x1050))
}

func TestAllocConsole_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { _ = AllocConsole() })
}

func TestLoad_FallbackReadsSizeOfImageFromDisk(t *testing.T) {
	path := buildPE64Fixture(t, 0x45000)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x45000), m.Size)
}

func TestExecutableDir_ReturnsADirectory(t *testing.T) {
	dir, err := ExecutableDir()
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolveNear(t *testing.T) {
	assert.Equal(t, filepath.Join("/root", "UnityPlayer.dll"), ResolveNear("/root", "UnityPlayer.dll"))
	assert.Equal(t, "/fixtures/GameAssembly.dll", ResolveNear("/root", "/fixtures/GameAssembly.dll"))
}
