package installer

import (
	"errors"
	"os"

	"github.com/kardianos/service"

	"agent-bootstrap/internal/logger"
	"agent-bootstrap/internal/target"
)

// Record describes a prior installation found by a probe.
type Record struct {
	Present          bool
	ServiceInstalled bool
	ServiceStatus    service.Status
	BinaryFound      bool
	UninstallCommand []string
}

// Prober detects a prior installation without side effects.
type Prober interface {
	Probe(d target.Descriptor) Record
}

// ServiceProbe asks the OS service manager for the descriptor's service and
// optionally checks the installed binary on disk.
type ServiceProbe struct {
	status func(name string) (service.Status, error)
	stat   func(path string) (os.FileInfo, error)
}

// NewServiceProbe returns a probe backed by kardianos/service.
func NewServiceProbe() *ServiceProbe {
	return &ServiceProbe{status: serviceStatus, stat: os.Stat}
}

// Probe reports whether d is already installed. When the service manager
// cannot be queried the binary path decides.
func (p *ServiceProbe) Probe(d target.Descriptor) Record {
	rec := Record{UninstallCommand: d.UninstallCommand()}
	checkBinary := d.ProbeBinary

	if d.ServiceName != "" {
		st, err := p.status(d.ServiceName)
		switch {
		case err == nil:
			rec.ServiceInstalled = true
			rec.ServiceStatus = st
		case errors.Is(err, service.ErrNotInstalled):
		default:
			logger.Debug("[DEBUG] Service query for %s failed, checking %s instead: %v\n", d.ServiceName, d.BinaryPath, err)
			checkBinary = true
		}
	}

	if checkBinary {
		if info, err := p.stat(d.BinaryPath); err == nil && !info.IsDir() {
			rec.BinaryFound = true
		}
	}

	rec.Present = rec.ServiceInstalled || rec.BinaryFound
	logger.Debug("[DEBUG] Probe %s: service=%t binary=%t\n", d.Name, rec.ServiceInstalled, rec.BinaryFound)
	return rec
}

// StatusText renders a service status for the status command.
func StatusText(rec Record) string {
	switch {
	case !rec.Present:
		return "not installed"
	case !rec.ServiceInstalled:
		return "binary present, service not registered"
	case rec.ServiceStatus == service.StatusRunning:
		return "installed, running"
	case rec.ServiceStatus == service.StatusStopped:
		return "installed, stopped"
	default:
		return "installed"
	}
}

// noopProgram satisfies service.Interface; the probe never starts anything.
type noopProgram struct{}

func (noopProgram) Start(service.Service) error { return nil }
func (noopProgram) Stop(service.Service) error  { return nil }

func serviceStatus(name string) (service.Status, error) {
	s, err := service.New(noopProgram{}, &service.Config{Name: name})
	if err != nil {
		return service.StatusUnknown, err
	}
	return s.Status()
}
