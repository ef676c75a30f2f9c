package target

import (
	"bufio"
	"os"
	"runtime"
	"strings"
)

// Platform identifies the host a descriptor is built for.
type Platform struct {
	OS   string
	Arch string
	RPM  bool // Linux host whose packages are managed by rpm rather than dpkg
}

// osReleasePath is replaced in tests.
var osReleasePath = "/etc/os-release"

// rpmFamilies are os-release ID / ID_LIKE values of rpm-based distributions.
var rpmFamilies = map[string]bool{
	"rhel":      true,
	"fedora":    true,
	"centos":    true,
	"rocky":     true,
	"almalinux": true,
	"ol":        true,
	"amzn":      true,
	"suse":      true,
	"opensuse":  true,
	"sles":      true,
	"mariner":   true,
}

// Host describes the machine the binary runs on.
func Host() Platform {
	p := Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
	if p.OS == "linux" {
		p.RPM = rpmBased(osReleasePath)
	}
	return p
}

// rpmBased reads an os-release file and reports whether the distribution or
// one it derives from is rpm-based. Debian derivatives win over ID_LIKE noise.
func rpmBased(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok || (key != "ID" && key != "ID_LIKE") {
			continue
		}
		ids = append(ids, strings.Fields(strings.ToLower(strings.Trim(value, `"'`)))...)
	}
	rpm := false
	for _, id := range ids {
		if id == "debian" || id == "ubuntu" {
			return false
		}
		if rpmFamilies[id] {
			rpm = true
		}
	}
	return rpm
}
