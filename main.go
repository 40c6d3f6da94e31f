// Package main provides the entry point for VPN Demo, a client-side
// session orchestrator for a partner VPN backend.
//
// Features:
//   - Environment preflight that installs the tunneling driver and service
//   - Anonymous or GitHub OAuth login with a two-factor challenge
//   - Session lifecycle with live tunnel state and traffic statistics
//   - Terminal interface plus a non-interactive CLI mode
//
// Usage:
//
//	vpn-demo [options]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stojanovic-vukas/vpn-demo/auth"
	"github.com/stojanovic-vukas/vpn-demo/cli"
	"github.com/stojanovic-vukas/vpn-demo/common"
	"github.com/stojanovic-vukas/vpn-demo/config"
	"github.com/stojanovic-vukas/vpn-demo/install"
	"github.com/stojanovic-vukas/vpn-demo/ui"
	"github.com/stojanovic-vukas/vpn-demo/vpn"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")

	// CLI mode flags
	connectFlag = flag.Bool("connect", false, "Log in, connect, and stay attached (CLI mode)")
	countryFlag = flag.String("country", "", "Country to connect to (empty for best available)")
	githubLogin = flag.String("github", "", "Authenticate via GitHub with this login")
)

func main() {
	flag.Parse()

	if *showHelp {
		cli.PrintHelp()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("%s v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	logLevel := common.LevelInfo
	if *verbose {
		logLevel = common.LevelTrace
	}

	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}
	defer common.CloseLogger()

	cfg, err := config.Load()
	if err != nil {
		common.LogWarn("Could not load configuration, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel)

	if *connectFlag {
		runCLI(ctx, cfg)
		return
	}

	common.LogInfo("Starting %s v%s", common.AppName, appVersion)
	prompter := ui.NewPrompter()
	controller := buildSession(cfg, prompter)
	controller.SetOnFatal(func(err error) {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		common.CloseLogger()
		os.Exit(1)
	})

	if cfg.ShowNotifications {
		if notifier, nerr := ui.NewDBusNotifier(); nerr == nil {
			defer notifier.Close()
			controller.SetNotifier(notifier)
		} else {
			common.LogWarn("Desktop notifications unavailable: %v", nerr)
		}
	}

	if err := ui.Run(controller, prompter); err != nil {
		common.LogError("Terminal interface failed: %v", err)
		os.Exit(1)
	}
}

// buildSession wires the dependency gate, the authentication
// coordinator, and the session controller over the loaded
// configuration. The prompter handles the two-factor challenge for
// whichever front-end is driving the session.
func buildSession(cfg *config.Config, prompter auth.ChallengePrompter) *vpn.Controller {
	driver := install.NewTapDriver(cfg.DriverDevicePath, cfg.DriverDir, cfg.DriverUnit)
	service := install.NewSystemService(cfg.ServiceName, cfg.ServiceBinary)
	gate := install.NewGate(driver, service)

	provider := auth.NewGithubProvider(common.GithubAPIURL, cfg.GithubClientID, cfg.GithubClientSecret)
	backend := auth.NewRestBackend(cfg.BackendURL, cfg.CarrierID)
	coordinator := auth.NewCoordinator(provider, backend, prompter)

	return vpn.NewController(cfg, gate, coordinator, vpn.HydraFactory{})
}

// runCLI handles the non-interactive flow: login, connect, and stay
// attached until interrupted.
func runCLI(ctx context.Context, cfg *config.Config) {
	controller := buildSession(cfg, cli.Prompter{})
	controller.SetOnFatal(func(err error) {
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		common.CloseLogger()
		os.Exit(1)
	})

	app := cli.New(controller)
	if err := app.Run(ctx, *githubLogin, *countryFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
// When a signal is received, it cancels the context to allow cleanup.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()
}
