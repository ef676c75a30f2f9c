package installer

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-bootstrap/internal/target"
)

type entry struct {
	name string
	body string
	mode int64
}

func writeTgz(t *testing.T, path string, entries []entry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: e.name, Mode: e.mode, Size: int64(len(e.body)), Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
}

func writeZip(t *testing.T, path string, entries []entry) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestExtractAndInstallTgz(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cloudflared_1234.tgz")
	writeTgz(t, src, []entry{
		{name: "README.md", body: "docs", mode: 0o644},
		{name: "cloudflared", body: "elf", mode: 0o755},
	})
	bin := filepath.Join(t.TempDir(), "usr", "local", "bin", "cloudflared")

	require.NoError(t, ExtractAndInstall(src, bin))

	data, err := os.ReadFile(bin)
	require.NoError(t, err)
	assert.Equal(t, "elf", string(data))
	info, err := os.Stat(bin)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "scratch directory must be removed")
}

func TestExtractAndInstallZipNested(t *testing.T) {
	src := filepath.Join(t.TempDir(), "client.zip")
	writeZip(t, src, []entry{{name: "release/bin/cloudbridge-client.exe", body: "pe"}})
	bin := filepath.Join(t.TempDir(), "cloudbridge-client.exe")

	require.NoError(t, ExtractAndInstall(src, bin))

	data, err := os.ReadFile(bin)
	require.NoError(t, err)
	assert.Equal(t, "pe", string(data))
}

func TestExtractAndInstallMissingBinary(t *testing.T) {
	src := filepath.Join(t.TempDir(), "other.zip")
	writeZip(t, src, []entry{{name: "something-else", body: "x"}})

	err := ExtractAndInstall(src, filepath.Join(t.TempDir(), "cloudflared"))
	assert.Error(t, err)
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	src := filepath.Join(t.TempDir(), "evil.zip")
	writeZip(t, src, []entry{{name: "../../escaped", body: "x"}})

	err := ExtractArchive(src, t.TempDir())
	assert.Error(t, err)
}

func TestExtractUnsupportedFormat(t *testing.T) {
	err := ExtractArchive("artifact.rar", t.TempDir())
	assert.ErrorContains(t, err, "unsupported archive format")
}

// copyFixture places testdata/<fixture> in a temp dir under name.
func copyFixture(t *testing.T, fixture, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", fixture))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// The fixtures hold README.md and release/cloudflared ("elf").
func TestExtractAndInstallFixtures(t *testing.T) {
	cases := []struct {
		fixture string
		name    string
	}{
		{"cloudflared.7z", "cloudflared_1.7z"},
		{"cloudflared.tar.xz", "cloudflared_1.tar.xz"},
		{"cloudflared.tar.xz", "cloudflared_1.txz"},
		{"cloudflared.tar.bz2", "cloudflared_1.tar.bz2"},
		{"cloudflared.tar.bz2", "cloudflared_1.tbz2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := copyFixture(t, tc.fixture, tc.name)
			bin := filepath.Join(t.TempDir(), "cloudflared")

			require.NoError(t, ExtractAndInstall(src, bin))

			data, err := os.ReadFile(bin)
			require.NoError(t, err)
			assert.Equal(t, "elf", string(data))
		})
	}
}

func TestExtractArchiveHandlesEveryArchiveExt(t *testing.T) {
	for _, ext := range target.ArchiveExts {
		t.Run(ext, func(t *testing.T) {
			// an empty file fails to decode, but must not be rejected by suffix
			src := filepath.Join(t.TempDir(), "artifact"+ext)
			require.NoError(t, os.WriteFile(src, nil, 0o644))

			err := ExtractArchive(src, t.TempDir())
			if err != nil {
				assert.NotContains(t, err.Error(), "unsupported archive format")
			}
		})
	}
}
