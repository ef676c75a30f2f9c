package target

import (
	"fmt"
	"slices"
	"strings"
)

// TokenPlaceholder is substituted with the registration token in RegisterArgs.
const TokenPlaceholder = "{token}"

// Method selects how a downloaded artifact is installed.
type Method string

const (
	MethodMSI     Method = "msi"     // msiexec /i <artifact> /qn
	MethodExe     Method = "exe"     // run the artifact with SilentArgs
	MethodPkg     Method = "pkg"     // macOS installer -pkg
	MethodDeb     Method = "deb"     // dpkg -i
	MethodRPM     Method = "rpm"     // rpm -Uvh
	MethodArchive Method = "archive" // extract and copy the binary into place
	MethodBinary  Method = "binary"  // the artifact is the binary itself
)

// ArchiveExts lists the artifact extensions MethodArchive can unpack.
var ArchiveExts = []string{".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tbz2", ".tar.xz", ".txz", ".zip", ".7z"}

// packageExt is the artifact extension each package-manager method expects.
var packageExt = map[Method]string{
	MethodMSI: ".msi",
	MethodExe: ".exe",
	MethodPkg: ".pkg",
	MethodDeb: ".deb",
	MethodRPM: ".rpm",
}

// Descriptor holds everything that differs between the two installable
// targets. The orchestration routine is the same for both.
type Descriptor struct {
	Choice      Choice
	Name        string // short name used in temp file names and log prefixes
	DisplayName string // shown to the operator
	URL         string // latest-release download endpoint
	ArtifactExt string // extension kept on the temp file so installers recognise it
	Method      Method
	SilentArgs  []string // extra arguments for MethodExe
	BinaryPath  string   // where the installed binary must exist afterwards
	ServiceName string   // OS service manager name probed for a prior install
	ProbeBinary bool     // also treat an existing BinaryPath as a prior install

	RegisterArgs  []string // e.g. service install {token}
	UninstallArgs []string // e.g. service uninstall

	// SuccessCodes lists exit codes other than 0 that the install step accepts.
	SuccessCodes []int
}

// Tag is the bracketed prefix used in console narration.
func (d Descriptor) Tag() string {
	return "[" + d.DisplayName + "]"
}

// RegisterCommand returns the registration argv with the token substituted.
func (d Descriptor) RegisterCommand(token string) []string {
	argv := make([]string, 0, len(d.RegisterArgs)+1)
	argv = append(argv, d.BinaryPath)
	for _, a := range d.RegisterArgs {
		argv = append(argv, strings.ReplaceAll(a, TokenPlaceholder, token))
	}
	return argv
}

// UninstallCommand returns the uninstall argv for an existing installation.
func (d Descriptor) UninstallCommand() []string {
	return append([]string{d.BinaryPath}, d.UninstallArgs...)
}

// Accepts reports whether an install exit code counts as success.
func (d Descriptor) Accepts(code int) bool {
	if code == 0 {
		return true
	}
	for _, c := range d.SuccessCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Validate checks that a descriptor is complete enough to drive a run.
func (d Descriptor) Validate() error {
	switch {
	case d.URL == "":
		return fmt.Errorf("%s: download url is empty", d.Name)
	case d.BinaryPath == "":
		return fmt.Errorf("%s: binary path is empty", d.Name)
	case len(d.RegisterArgs) == 0:
		return fmt.Errorf("%s: register arguments are empty", d.Name)
	}
	switch d.Method {
	case MethodMSI, MethodExe, MethodPkg, MethodDeb, MethodRPM:
		if want := packageExt[d.Method]; !strings.EqualFold(d.ArtifactExt, want) {
			return fmt.Errorf("%s: method %s needs artifact extension %s, got %q", d.Name, d.Method, want, d.ArtifactExt)
		}
	case MethodArchive:
		if !slices.Contains(ArchiveExts, d.ArtifactExt) {
			return fmt.Errorf("%s: unsupported archive extension %q", d.Name, d.ArtifactExt)
		}
	case MethodBinary:
	default:
		return fmt.Errorf("%s: unknown install method %q", d.Name, d.Method)
	}
	if len(d.SilentArgs) > 0 && d.Method != MethodExe {
		return fmt.Errorf("%s: silent arguments only apply to method %s", d.Name, MethodExe)
	}
	for _, a := range d.RegisterArgs {
		if strings.Contains(a, TokenPlaceholder) {
			return nil
		}
	}
	return fmt.Errorf("%s: register arguments do not reference %s", d.Name, TokenPlaceholder)
}

// Defaults returns the built-in descriptor for a choice on the current host.
func Defaults(c Choice) (Descriptor, error) {
	return ForPlatform(c, Host())
}

// DefaultsFor returns the built-in descriptor for a choice on goos/goarch,
// assuming a dpkg-managed host on Linux.
func DefaultsFor(c Choice, goos, goarch string) (Descriptor, error) {
	return ForPlatform(c, Platform{OS: goos, Arch: goarch})
}

// ForPlatform returns the built-in descriptor for a choice on p.
func ForPlatform(c Choice, p Platform) (Descriptor, error) {
	switch c {
	case TunnelAgent:
		return tunnelAgent(p)
	case BridgeClient:
		return bridgeClient(p.OS, p.Arch)
	default:
		return Descriptor{}, fmt.Errorf("%w: %q", ErrInvalidChoice, string(c))
	}
}

// rpmArch maps GOARCH to the architecture names used in rpm file names.
var rpmArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "aarch64",
	"386":   "386",
	"arm":   "arm",
}

func tunnelAgent(p Platform) (Descriptor, error) {
	const base = "https://github.com/cloudflare/cloudflared/releases/latest/download/"
	d := Descriptor{
		Choice:        TunnelAgent,
		Name:          "cloudflared",
		DisplayName:   "Cloudflared",
		RegisterArgs:  []string{"service", "install", TokenPlaceholder},
		UninstallArgs: []string{"service", "uninstall"},
	}
	switch p.OS {
	case "windows":
		d.URL = base + "cloudflared-windows-" + p.Arch + ".msi"
		d.ArtifactExt = ".msi"
		d.Method = MethodMSI
		d.BinaryPath = `C:\Program Files (x86)\cloudflared\cloudflared.exe`
		d.ServiceName = "Cloudflared"
		d.SuccessCodes = []int{3010} // ERROR_SUCCESS_REBOOT_REQUIRED
	case "linux":
		if p.RPM {
			arch, ok := rpmArch[p.Arch]
			if !ok {
				return Descriptor{}, fmt.Errorf("cloudflared: no rpm for %s/%s", p.OS, p.Arch)
			}
			d.URL = base + "cloudflared-linux-" + arch + ".rpm"
			d.ArtifactExt = ".rpm"
			d.Method = MethodRPM
		} else {
			d.URL = base + "cloudflared-linux-" + p.Arch + ".deb"
			d.ArtifactExt = ".deb"
			d.Method = MethodDeb
		}
		d.BinaryPath = "/usr/bin/cloudflared"
		d.ServiceName = "cloudflared"
	case "darwin":
		d.URL = base + "cloudflared-darwin-" + p.Arch + ".tgz"
		d.ArtifactExt = ".tgz"
		d.Method = MethodArchive
		d.BinaryPath = "/usr/local/bin/cloudflared"
		d.ServiceName = "com.cloudflare.cloudflared"
	default:
		return Descriptor{}, fmt.Errorf("cloudflared: unsupported platform %s/%s", p.OS, p.Arch)
	}
	return d, nil
}

func bridgeClient(goos, goarch string) (Descriptor, error) {
	const base = "https://github.com/mlanies/cloudbridge-client/releases/latest/download/"
	d := Descriptor{
		Choice:        BridgeClient,
		Name:          "cloudbridge-client",
		DisplayName:   "CloudBridge Client",
		Method:        MethodBinary,
		ProbeBinary:   true,
		RegisterArgs:  []string{"service", "install", TokenPlaceholder},
		UninstallArgs: []string{"service", "uninstall"},
	}
	switch goos {
	case "windows":
		d.URL = base + "cloudbridge-client-windows-" + goarch + ".exe"
		d.ArtifactExt = ".exe"
		d.BinaryPath = `C:\Program Files\CloudBridgeClient\cloudbridge-client.exe`
		d.ServiceName = "CloudBridgeClient"
	case "linux", "darwin":
		d.URL = base + "cloudbridge-client-" + goos + "-" + goarch
		d.BinaryPath = "/usr/local/bin/cloudbridge-client"
		d.ServiceName = "cloudbridge-client"
	default:
		return Descriptor{}, fmt.Errorf("cloudbridge-client: unsupported platform %s/%s", goos, goarch)
	}
	return d, nil
}
