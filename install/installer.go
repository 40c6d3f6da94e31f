// Package install implements the environment preflight: checking and
// installing the privileged OS dependencies (tunneling driver and
// background service) required before any VPN operation.
package install

import (
	"context"
	"encoding/hex"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/stojanovic-vukas/vpn-demo/common"
)

// Dependency identifies one of the privileged OS dependencies.
type Dependency int

const (
	// DependencyDriver is the kernel tunneling driver.
	DependencyDriver Dependency = iota
	// DependencyService is the background tunneling service.
	DependencyService
)

// String returns a human-readable dependency name.
func (d Dependency) String() string {
	switch d {
	case DependencyDriver:
		return "tunneling driver"
	case DependencyService:
		return "tunneling service"
	default:
		return "unknown dependency"
	}
}

// DriverInstaller checks for and installs the tunneling driver.
type DriverInstaller interface {
	// IsInstalled probes for the driver. It reports true only when the
	// device node is present and the driver service is running.
	IsInstalled() bool
	// Install runs the privileged driver installer.
	Install(ctx context.Context) (bool, error)
}

// ServiceInstaller checks for, installs, and uninstalls the background
// tunneling service.
type ServiceInstaller interface {
	// IsInstalled probes for the service and verifies it matches the
	// binary bundled with the running application. A stale install is
	// removed as a side effect and reported as not installed.
	IsInstalled() bool
	// Install runs the privileged service installer.
	Install(ctx context.Context) (bool, error)
	// Uninstall removes the installed service.
	Uninstall(ctx context.Context) (bool, error)
}

// TapDriver is the exec-based DriverInstaller for the bundled TAP driver.
type TapDriver struct {
	// DevicePath is the device node the driver exposes when loaded.
	DevicePath string
	// DriverDir holds the bundled installer files.
	DriverDir string
	// UnitName is the driver's service unit.
	UnitName string
	log      common.Logger
}

// NewTapDriver creates a TapDriver installer.
func NewTapDriver(devicePath, driverDir, unitName string) *TapDriver {
	return &TapDriver{
		DevicePath: devicePath,
		DriverDir:  driverDir,
		UnitName:   unitName,
		log:        common.GetLogger(),
	}
}

// IsInstalled reports whether the driver is present and its service
// is running. Both conditions must hold.
func (d *TapDriver) IsInstalled() bool {
	if !common.FileExists(d.DevicePath) {
		return false
	}
	return isUnitActive(d.UnitName)
}

// Install runs the privileged driver installer and waits for it.
func (d *TapDriver) Install(ctx context.Context) (bool, error) {
	installer := filepath.Join(d.DriverDir, "install.sh")

	ctx, cancel := context.WithTimeout(ctx, common.InstallTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pkexec", installer, d.UnitName)
	output, err := cmd.CombinedOutput()
	if err != nil {
		d.log.Error("Could not install TAP driver: %v (%s)", err, strings.TrimSpace(string(output)))
		return false, nil
	}
	return true, nil
}

// SystemService is the exec-based ServiceInstaller for the background
// tunneling service.
type SystemService struct {
	// Name is the service name to install under.
	Name string
	// Binary is the bundled service executable.
	Binary string
	log    common.Logger

	// queryPath returns the installed service's binary path, or empty
	// when the path cannot be determined. Overridable in tests.
	queryPath func(name string) string
	// runVerb invokes the privileged installer with a verb.
	// Overridable in tests.
	runVerb func(ctx context.Context, verb string) (bool, error)
}

// NewSystemService creates a SystemService installer.
func NewSystemService(name, binary string) *SystemService {
	s := &SystemService{
		Name:      name,
		Binary:    binary,
		log:       common.GetLogger(),
		queryPath: queryServicePath,
	}
	s.runVerb = s.execInstaller
	return s
}

// IsInstalled reports whether the service is installed and up to date.
// When the installed binary differs from the bundled one, the stale
// service is uninstalled and false is returned to force a reinstall.
func (s *SystemService) IsInstalled() bool {
	if s.Name == "" {
		return false
	}
	if !isUnitKnown(s.Name) {
		return false
	}
	return s.isUpToDate()
}

// isUpToDate compares the installed service binary with the bundled
// one: path equality is the fast path, then a content hash. A mismatch
// removes the stale install.
func (s *SystemService) isUpToDate() bool {
	installedPath := s.queryPath(s.Name)
	if installedPath == "" {
		s.uninstallStale()
		return false
	}

	bundledPath, err := filepath.Abs(s.Binary)
	if err != nil {
		// Cannot locate our own binary, no further checks possible.
		return true
	}

	if installedPath == bundledPath {
		return true
	}

	installedHash := fileHash(installedPath)
	bundledHash := fileHash(bundledPath)
	if installedHash == "" || installedHash != bundledHash {
		s.log.Info("Installed %s is stale, removing", s.Name)
		s.uninstallStale()
		return false
	}

	return true
}

func (s *SystemService) uninstallStale() {
	if _, err := s.Uninstall(context.Background()); err != nil {
		s.log.Warn("Could not remove stale service %s: %v", s.Name, err)
	}
}

// Install runs the privileged service installer and waits for it.
func (s *SystemService) Install(ctx context.Context) (bool, error) {
	return s.runVerb(ctx, "install")
}

// Uninstall removes the installed service.
func (s *SystemService) Uninstall(ctx context.Context) (bool, error) {
	return s.runVerb(ctx, "uninstall")
}

// execInstaller invokes the bundled service binary with an install or
// uninstall verb, elevated.
func (s *SystemService) execInstaller(ctx context.Context, verb string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, common.InstallTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pkexec", s.Binary, "-"+verb, s.Name)
	output, err := cmd.CombinedOutput()
	if err != nil {
		s.log.Error("Could not %s service %s: %v (%s)", verb, s.Name, err, strings.TrimSpace(string(output)))
		return false, nil
	}
	return true, nil
}

// fileHash returns the hex BLAKE2b-256 digest of a file, or empty when
// the file cannot be read.
func fileHash(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return ""
	}
	if _, err := io.Copy(hasher, file); err != nil {
		return ""
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// isUnitActive reports whether a service unit is currently running.
func isUnitActive(name string) bool {
	if name == "" {
		return false
	}
	return exec.Command("systemctl", "is-active", "--quiet", name).Run() == nil
}

// isUnitKnown reports whether a service unit exists at all, running
// or not.
func isUnitKnown(name string) bool {
	cmd := exec.Command("systemctl", "show", "-p", "LoadState", "--value", name)
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(output)) == "loaded"
}

// queryServicePath returns the executable path of an installed service
// unit, unquoted, or empty when it cannot be determined.
func queryServicePath(name string) string {
	cmd := exec.Command("systemctl", "show", "-p", "ExecStart", "--value", name)
	output, err := cmd.Output()
	if err != nil {
		return ""
	}

	// Output looks like: { path=/usr/bin/foo ; argv[]=... }
	text := string(output)
	idx := strings.Index(text, "path=")
	if idx < 0 {
		return ""
	}
	text = text[idx+len("path="):]
	if end := strings.IndexAny(text, " ;}"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}
