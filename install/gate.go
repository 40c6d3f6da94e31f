package install

import (
	"context"
	"fmt"

	"github.com/stojanovic-vukas/vpn-demo/common"
)

// Outcome describes the result of a successful preflight check.
type Outcome int

const (
	// OutcomeInstalled means the dependency was already present.
	OutcomeInstalled Outcome = iota
	// OutcomeInstalledAfterSetup means the dependency was installed
	// during this preflight pass.
	OutcomeInstalledAfterSetup
)

// String returns a human-readable outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeInstalled:
		return "Installed"
	case OutcomeInstalledAfterSetup:
		return "InstalledAfterSetup"
	default:
		return "Unknown"
	}
}

// Gate runs the environment preflight. Both privileged dependencies
// must pass before any authentication or VPN bootstrap; an install
// failure is terminal for the application because a half-installed
// driver or service cannot be reasoned about safely.
type Gate struct {
	driver  DriverInstaller
	service ServiceInstaller
	log     common.Logger
}

// NewGate creates a dependency gate over the given installers.
func NewGate(driver DriverInstaller, service ServiceInstaller) *Gate {
	return &Gate{
		driver:  driver,
		service: service,
		log:     common.GetLogger(),
	}
}

// CheckAndEnsure probes a single dependency and installs it when
// missing. Installed state is probed fresh on every call; results are
// never cached across preflight passes.
func (g *Gate) CheckAndEnsure(ctx context.Context, dep Dependency) (Outcome, error) {
	switch dep {
	case DependencyDriver:
		return g.ensure(ctx, dep, g.driver.IsInstalled, g.driver.Install, common.ErrDriverInstall)
	case DependencyService:
		return g.ensure(ctx, dep, g.service.IsInstalled, g.service.Install, common.ErrServiceInstall)
	default:
		return 0, fmt.Errorf("unknown dependency %d", dep)
	}
}

// EnsureAll runs the full preflight: driver first, then service.
// It stops at the first failure.
func (g *Gate) EnsureAll(ctx context.Context) error {
	for _, dep := range []Dependency{DependencyDriver, DependencyService} {
		if _, err := g.CheckAndEnsure(ctx, dep); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gate) ensure(ctx context.Context, dep Dependency, isInstalled func() bool, installFn func(context.Context) (bool, error), failure error) (Outcome, error) {
	if isInstalled() {
		g.log.Trace("Preflight: %s already installed", dep)
		return OutcomeInstalled, nil
	}

	g.log.Info("Preflight: installing %s", dep)
	ok, err := installFn(ctx)
	if err != nil {
		return 0, common.WrapError(err, failure.Error())
	}
	if !ok {
		return 0, failure
	}

	g.log.Info("Preflight: %s installed", dep)
	return OutcomeInstalledAfterSetup, nil
}
