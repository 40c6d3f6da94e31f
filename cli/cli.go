// Package cli provides the non-interactive command flow for VPN Demo.
// It drives the same session controller as the terminal interface:
// login, connect, status, then disconnect and logout on interrupt.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/stojanovic-vukas/vpn-demo/auth"
	"github.com/stojanovic-vukas/vpn-demo/common"
	"github.com/stojanovic-vukas/vpn-demo/vpn"
)

// App wraps the session controller for one-shot terminal use.
type App struct {
	controller *vpn.Controller
}

// New creates a CLI app over an already constructed controller.
func New(controller *vpn.Controller) *App {
	return &App{controller: controller}
}

// Prompter resolves the two-factor challenge on the terminal. An empty
// line cancels the challenge.
type Prompter struct{}

// RequestCode reads a one-time code from stdin.
func (Prompter) RequestCode(ctx context.Context) (string, bool) {
	fmt.Print("One-time code (empty to cancel): ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", false
	}
	code := strings.TrimSpace(line)
	if code == "" {
		return "", false
	}
	return code, true
}

// ReadPassword prompts for a password without echoing it.
func ReadPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", common.WrapError(err, "could not read password")
	}
	return string(password), nil
}

// Run performs the full session flow: login, connect, report, then
// block until the context is cancelled and tear the session down.
// githubLogin empty means anonymous; country empty means best
// available.
func (a *App) Run(ctx context.Context, githubLogin, country string) error {
	creds := auth.Credentials{Mode: auth.ModeAnonymous}
	if githubLogin != "" {
		password, err := ReadPassword("GitHub password: ")
		if err != nil {
			return err
		}
		creds = auth.Credentials{
			Mode:     auth.ModeGithub,
			Login:    githubLogin,
			Password: password,
		}
	}

	fmt.Println("Logging in...")
	if err := a.controller.Login(ctx, creds); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	a.controller.Start()
	defer a.controller.Close()

	snap := a.controller.Snapshot()
	fmt.Printf("✓ Logged in (device %s)\n", snap.DeviceID)
	if country != "" && !common.StringInSlice(country, snap.Countries) {
		fmt.Printf("Warning: %s is not in the advertised country list\n", country)
	}

	fmt.Printf("Connecting to %s...\n", displayCountry(country))
	if err := a.controller.Connect(ctx, country); err != nil {
		a.teardown()
		return fmt.Errorf("connection failed: %w", err)
	}

	if err := a.waitForConnected(ctx); err != nil {
		a.teardown()
		return err
	}

	fmt.Printf("✓ Connected to %s\n", displayCountry(country))
	a.PrintStatus()
	fmt.Println("Press Ctrl+C to disconnect.")

	<-ctx.Done()
	a.teardown()
	fmt.Println("✓ Disconnected")
	return nil
}

// waitForConnected polls the session until the tunnel comes up, the
// session reports an error, or the wait times out.
func (a *App) waitForConnected(ctx context.Context) error {
	timeout := time.After(common.ConnectionTimeout)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return common.ErrTimeout
		case <-ticker.C:
			snap := a.controller.Snapshot()
			switch {
			case snap.ConnState == vpn.Connected:
				return nil
			case snap.ConnState == vpn.Disconnected && snap.ErrorVisible:
				return fmt.Errorf("connection failed: %s", snap.ErrorText)
			}
		}
	}
}

// PrintStatus prints the current session as a table.
func (a *App) PrintStatus() {
	snap := a.controller.Snapshot()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tTUNNEL\tCOUNTRY\tSENT\tRECEIVED")
	fmt.Fprintln(w, "-------\t------\t-------\t----\t--------")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		snap.AuthState, snap.ConnState, displayCountry(snap.SelectedCountry),
		snap.BytesSent, snap.BytesReceived)
	w.Flush()

	if snap.RemainingTraffic != "" {
		fmt.Println(strings.ReplaceAll(snap.RemainingTraffic, "\n", ", "))
	}
}

// teardown disconnects and logs out with a fresh timeout, best effort.
func (a *App) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), common.BackendCallTimeout)
	defer cancel()

	if err := a.controller.Disconnect(ctx); err != nil {
		common.LogWarn("Teardown disconnect: %v", err)
	}
	if err := a.controller.Logout(ctx); err != nil {
		fmt.Printf("Warning: logout failed: %v\n", err)
	}
}

func displayCountry(country string) string {
	if country == "" {
		return "best available"
	}
	return country
}

// PrintHelp prints CLI usage help.
func PrintHelp() {
	fmt.Println(`VPN Demo - session orchestrator

Usage:
  vpn-demo [OPTIONS]

Options:
  --version         Show version and exit
  --verbose         Enable verbose logging
  --connect         Log in, connect, and stay attached (CLI mode)
  --country CC      Country to connect to (empty for best available)
  --github LOGIN    Authenticate via GitHub instead of anonymously
  --help            Show this help message

Examples:
  vpn-demo                              Launch the terminal interface
  vpn-demo --connect --country US       Anonymous session to the US
  vpn-demo --connect --github octocat   GitHub session, best available

Notes:
  - GitHub mode prompts for the password and, when the account has
    two-factor enabled, for a one-time code
  - Ctrl+C disconnects and logs out before exiting`)
}
