package target

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChoice(t *testing.T) {
	cases := map[string]Choice{
		"1":           TunnelAgent,
		" 2 ":         BridgeClient,
		"tunnel":      TunnelAgent,
		"Bridge":      BridgeClient,
		"cloudflared": TunnelAgent,
	}
	for in, want := range cases {
		got, err := ParseChoice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "0", "3", "9", "yes", "12"} {
		_, err := ParseChoice(in)
		assert.True(t, errors.Is(err, ErrInvalidChoice), in)
	}
}

func TestDefaultsForWindowsMatchesLegacyPaths(t *testing.T) {
	tunnel, err := DefaultsFor(TunnelAgent, "windows", "amd64")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/cloudflare/cloudflared/releases/latest/download/cloudflared-windows-amd64.msi", tunnel.URL)
	assert.Equal(t, MethodMSI, tunnel.Method)
	assert.Equal(t, `C:\Program Files (x86)\cloudflared\cloudflared.exe`, tunnel.BinaryPath)
	assert.Equal(t, "Cloudflared", tunnel.ServiceName)
	assert.True(t, tunnel.Accepts(3010))
	assert.False(t, tunnel.Accepts(1603))

	bridge, err := DefaultsFor(BridgeClient, "windows", "amd64")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/mlanies/cloudbridge-client/releases/latest/download/cloudbridge-client-windows-amd64.exe", bridge.URL)
	assert.Equal(t, `C:\Program Files\CloudBridgeClient\cloudbridge-client.exe`, bridge.BinaryPath)
	assert.True(t, bridge.ProbeBinary)
}

func TestDefaultsAreValid(t *testing.T) {
	for _, goos := range []string{"windows", "linux", "darwin"} {
		for _, c := range Choices {
			d, err := DefaultsFor(c, goos, "amd64")
			require.NoError(t, err)
			assert.NoError(t, d.Validate(), "%s/%s", goos, c.Key())
		}
	}
}

func TestDefaultsForUnknown(t *testing.T) {
	_, err := DefaultsFor(Choice("9"), "linux", "amd64")
	assert.ErrorIs(t, err, ErrInvalidChoice)

	_, err = DefaultsFor(TunnelAgent, "plan9", "amd64")
	assert.Error(t, err)
}

func TestRegisterCommandSubstitutesToken(t *testing.T) {
	d, err := DefaultsFor(BridgeClient, "linux", "amd64")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"/usr/local/bin/cloudbridge-client", "service", "install", "abc123"},
		d.RegisterCommand("abc123"))
	assert.Equal(t,
		[]string{"/usr/local/bin/cloudbridge-client", "service", "uninstall"},
		d.UninstallCommand())
}

func TestValidateRejectsIncompleteDescriptor(t *testing.T) {
	d, err := DefaultsFor(TunnelAgent, "linux", "amd64")
	require.NoError(t, err)

	noToken := d
	noToken.RegisterArgs = []string{"service", "install"}
	assert.Error(t, noToken.Validate())

	badMethod := d
	badMethod.Method = "snap"
	assert.Error(t, badMethod.Validate())

	noURL := d
	noURL.URL = ""
	assert.Error(t, noURL.Validate())
}

func TestValidateChecksArtifactExtension(t *testing.T) {
	d, err := DefaultsFor(TunnelAgent, "linux", "amd64")
	require.NoError(t, err)

	wrongPkg := d
	wrongPkg.Method = MethodRPM
	assert.ErrorContains(t, wrongPkg.Validate(), ".rpm")

	archive := d
	archive.Method = MethodArchive
	archive.ArtifactExt = ".rar"
	assert.ErrorContains(t, archive.Validate(), "unsupported archive extension")
	archive.ArtifactExt = ".tar.xz"
	assert.NoError(t, archive.Validate())

	exe := d
	exe.Method = MethodExe
	exe.ArtifactExt = ".exe"
	exe.SilentArgs = []string{"/quiet"}
	assert.NoError(t, exe.Validate())

	stray := d
	stray.SilentArgs = []string{"/quiet"}
	assert.ErrorContains(t, stray.Validate(), "silent arguments")
}

func TestForPlatformSelectsRPMOnRPMHosts(t *testing.T) {
	d, err := ForPlatform(TunnelAgent, Platform{OS: "linux", Arch: "amd64", RPM: true})
	require.NoError(t, err)
	assert.Equal(t, MethodRPM, d.Method)
	assert.Equal(t, ".rpm", d.ArtifactExt)
	assert.Equal(t, "https://github.com/cloudflare/cloudflared/releases/latest/download/cloudflared-linux-x86_64.rpm", d.URL)
	assert.NoError(t, d.Validate())

	arm, err := ForPlatform(TunnelAgent, Platform{OS: "linux", Arch: "arm64", RPM: true})
	require.NoError(t, err)
	assert.Contains(t, arm.URL, "cloudflared-linux-aarch64.rpm")

	deb, err := ForPlatform(TunnelAgent, Platform{OS: "linux", Arch: "amd64"})
	require.NoError(t, err)
	assert.Equal(t, MethodDeb, deb.Method)

	// the bridge client ships a bare binary either way
	bridge, err := ForPlatform(BridgeClient, Platform{OS: "linux", Arch: "amd64", RPM: true})
	require.NoError(t, err)
	assert.Equal(t, MethodBinary, bridge.Method)
}

func TestRPMBasedReadsOSRelease(t *testing.T) {
	cases := map[string]bool{
		"ID=fedora\n": true,
		"ID=\"rocky\"\nID_LIKE=\"rhel centos fedora\"\n":    true,
		"ID=\"opensuse-leap\"\nID_LIKE=\"suse opensuse\"\n": true,
		"ID=ubuntu\nID_LIKE=debian\n":                       false,
		"ID=debian\n":                                       false,
		"ID=arch\n":                                         false,
		"NAME=\"Fedora\"\n":                                 false,
	}
	for body, want := range cases {
		path := filepath.Join(t.TempDir(), "os-release")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		assert.Equal(t, want, rpmBased(path), body)
	}
	assert.False(t, rpmBased(filepath.Join(t.TempDir(), "absent")))
}

func TestHostUsesOSRelease(t *testing.T) {
	orig := osReleasePath
	t.Cleanup(func() { osReleasePath = orig })
	osReleasePath = filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(osReleasePath, []byte("ID=centos\nID_LIKE=\"rhel fedora\"\n"), 0o644))

	p := Host()
	assert.Equal(t, runtime.GOOS, p.OS)
	assert.Equal(t, runtime.GOOS == "linux", p.RPM)
}
