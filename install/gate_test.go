package install

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stojanovic-vukas/vpn-demo/common"
)

type fakeDriver struct {
	installed      bool
	installOK      bool
	installErr     error
	installCalls   int
	installedCalls int
}

func (f *fakeDriver) IsInstalled() bool {
	f.installedCalls++
	return f.installed
}

func (f *fakeDriver) Install(ctx context.Context) (bool, error) {
	f.installCalls++
	return f.installOK, f.installErr
}

type fakeService struct {
	installed      bool
	installOK      bool
	installCalls   int
	uninstallCalls int
}

func (f *fakeService) IsInstalled() bool { return f.installed }

func (f *fakeService) Install(ctx context.Context) (bool, error) {
	f.installCalls++
	return f.installOK, nil
}

func (f *fakeService) Uninstall(ctx context.Context) (bool, error) {
	f.uninstallCalls++
	return true, nil
}

func TestDependency_String(t *testing.T) {
	tests := []struct {
		dep      Dependency
		expected string
	}{
		{DependencyDriver, "tunneling driver"},
		{DependencyService, "tunneling service"},
		{Dependency(99), "unknown dependency"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.dep.String(); got != tt.expected {
				t.Errorf("Dependency.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGate_AlreadyInstalled(t *testing.T) {
	driver := &fakeDriver{installed: true}
	gate := NewGate(driver, &fakeService{installed: true})

	outcome, err := gate.CheckAndEnsure(context.Background(), DependencyDriver)
	if err != nil {
		t.Fatalf("CheckAndEnsure() error = %v", err)
	}
	if outcome != OutcomeInstalled {
		t.Errorf("outcome = %v, want Installed", outcome)
	}
	if driver.installCalls != 0 {
		t.Error("Install should not be called when already installed")
	}
}

func TestGate_InstallsMissingDependency(t *testing.T) {
	driver := &fakeDriver{installed: false, installOK: true}
	gate := NewGate(driver, &fakeService{installed: true})

	outcome, err := gate.CheckAndEnsure(context.Background(), DependencyDriver)
	if err != nil {
		t.Fatalf("CheckAndEnsure() error = %v", err)
	}
	if outcome != OutcomeInstalledAfterSetup {
		t.Errorf("outcome = %v, want InstalledAfterSetup", outcome)
	}
	if driver.installCalls != 1 {
		t.Errorf("installCalls = %d, want 1", driver.installCalls)
	}
}

func TestGate_InstallFailureIsTerminal(t *testing.T) {
	driver := &fakeDriver{installed: false, installOK: false}
	gate := NewGate(driver, &fakeService{installed: true})

	_, err := gate.CheckAndEnsure(context.Background(), DependencyDriver)
	if !errors.Is(err, common.ErrDriverInstall) {
		t.Errorf("error = %v, want ErrDriverInstall", err)
	}
}

func TestGate_EnsureAll_Order(t *testing.T) {
	driver := &fakeDriver{installed: false, installOK: false}
	service := &fakeService{installed: false, installOK: true}
	gate := NewGate(driver, service)

	err := gate.EnsureAll(context.Background())
	if !errors.Is(err, common.ErrDriverInstall) {
		t.Fatalf("EnsureAll() error = %v, want ErrDriverInstall", err)
	}

	// Driver failure must stop the pass before the service is touched.
	if service.installCalls != 0 {
		t.Error("service install should not run after driver failure")
	}
}

func TestGate_EnsureAll_Success(t *testing.T) {
	driver := &fakeDriver{installed: false, installOK: true}
	service := &fakeService{installed: false, installOK: true}
	gate := NewGate(driver, service)

	if err := gate.EnsureAll(context.Background()); err != nil {
		t.Fatalf("EnsureAll() error = %v", err)
	}
	if driver.installCalls != 1 || service.installCalls != 1 {
		t.Errorf("installCalls = %d/%d, want 1/1", driver.installCalls, service.installCalls)
	}
}

func TestGate_ProbesFreshEachPass(t *testing.T) {
	driver := &fakeDriver{installed: true}
	gate := NewGate(driver, &fakeService{installed: true})

	gate.CheckAndEnsure(context.Background(), DependencyDriver)
	gate.CheckAndEnsure(context.Background(), DependencyDriver)

	// The installed file may change between checks, so no caching.
	if driver.installedCalls != 2 {
		t.Errorf("installedCalls = %d, want 2", driver.installedCalls)
	}
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestService(t *testing.T, binary, installedPath string) *SystemService {
	t.Helper()
	svc := NewSystemService("testsvc", binary)
	svc.queryPath = func(string) string { return installedPath }
	svc.runVerb = func(ctx context.Context, verb string) (bool, error) { return true, nil }
	return svc
}

func TestSystemService_UpToDate_PathMatch(t *testing.T) {
	dir := t.TempDir()
	binary := writeTempFile(t, dir, "svc", "binary-contents")

	svc := newTestService(t, binary, binary)

	if !svc.isUpToDate() {
		t.Error("service with matching path should be up to date")
	}
}

func TestSystemService_UpToDate_HashMatch(t *testing.T) {
	dir := t.TempDir()
	bundled := writeTempFile(t, dir, "bundled", "same-contents")
	installed := writeTempFile(t, dir, "installed", "same-contents")

	svc := newTestService(t, bundled, installed)

	if !svc.isUpToDate() {
		t.Error("service with matching hash should be up to date")
	}
}

func TestSystemService_StaleHashForcesReinstall(t *testing.T) {
	dir := t.TempDir()
	bundled := writeTempFile(t, dir, "bundled", "new-contents")
	installed := writeTempFile(t, dir, "installed", "old-contents")

	svc := newTestService(t, bundled, installed)

	uninstalled := false
	svc.runVerb = func(ctx context.Context, verb string) (bool, error) {
		if verb == "uninstall" {
			uninstalled = true
		}
		return true, nil
	}

	if svc.isUpToDate() {
		t.Error("service with differing hash should be reported stale")
	}
	if !uninstalled {
		t.Error("stale service should be uninstalled")
	}
}

func TestFileHash(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a", "contents")
	b := writeTempFile(t, dir, "b", "contents")
	c := writeTempFile(t, dir, "c", "different")

	if fileHash(a) == "" {
		t.Fatal("fileHash returned empty for readable file")
	}
	if fileHash(a) != fileHash(b) {
		t.Error("identical files should hash equal")
	}
	if fileHash(a) == fileHash(c) {
		t.Error("different files should hash differently")
	}
	if fileHash(filepath.Join(dir, "missing")) != "" {
		t.Error("missing file should hash to empty string")
	}
}
