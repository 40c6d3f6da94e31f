package vpn

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/stojanovic-vukas/vpn-demo/common"
)

// HydraFactory constructs service-backed clients, one per session.
type HydraFactory struct{}

// New creates a client bound to the session's token and device id.
func (HydraFactory) New(cfg ClientConfig) (Client, error) {
	if cfg.AccessToken == "" {
		return nil, common.ErrNotLoggedIn
	}
	return &hydraClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: common.BackendCallTimeout},
		log:        common.GetLogger(),
	}, nil
}

// hydraClient drives the tunneling service process and talks to the
// partner backend's REST endpoints. Tunnel state and statistics arrive
// on the service's status stream, one line per event.
type hydraClient struct {
	cfg        ClientConfig
	httpClient *http.Client
	log        common.Logger

	mu          sync.Mutex
	cmd         *exec.Cmd
	stopping    bool
	closed      bool
	onConnected func(connected bool)
	onStats     func(bytesSent, bytesReceived uint64)
}

func (c *hydraClient) SetOnConnectedChanged(handler func(connected bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnected = handler
}

func (c *hydraClient) SetOnStatisticsChanged(handler func(bytesSent, bytesReceived uint64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStats = handler
}

// Close detaches the event handlers and tears down any running tunnel
// process. A closed client never fires another event.
func (c *hydraClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.onConnected = nil
	c.onStats = nil
	cmd := c.cmd
	c.cmd = nil
	c.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	return nil
}

// StartVpn launches the tunneling service attached to this session and
// begins monitoring its status stream. Reaching the connected state is
// reported through the connected-changed event.
func (c *hydraClient) StartVpn(ctx context.Context, country string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return common.ErrNotLoggedIn
	}
	if c.cmd != nil {
		c.mu.Unlock()
		return common.ErrAlreadyConnected
	}
	c.stopping = false
	c.mu.Unlock()

	args := []string{
		"connect",
		"--carrier", c.cfg.CarrierID,
		"--device-id", c.cfg.DeviceID,
		"--token", c.cfg.AccessToken,
	}
	if country != "" {
		args = append(args, "--country", country)
	}
	for _, domain := range c.cfg.BypassDomains {
		args = append(args, "--bypass", domain)
	}
	if c.cfg.ReconnectOnWakeUp {
		args = append(args, "--reconnect-on-wakeup")
	}

	cmd := exec.Command(c.cfg.ServiceName, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return common.WrapError(err, "could not attach to service output")
	}

	if err := cmd.Start(); err != nil {
		return common.WrapError(common.ErrConnectionFailed, err.Error())
	}
	c.log.Trace("Tunnel process started (pid %d)", cmd.Process.Pid)

	c.mu.Lock()
	c.cmd = cmd
	c.mu.Unlock()

	go c.monitorStatus(stdout)
	go c.waitForExit(cmd)

	return nil
}

// StopVpn terminates the tunnel process. The service has no graceful
// stop verb; killing the attached process tears the tunnel down.
func (c *hydraClient) StopVpn(ctx context.Context) error {
	c.mu.Lock()
	cmd := c.cmd
	c.stopping = true
	c.cmd = nil
	c.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil {
		return common.WrapError(err, "could not stop tunnel process")
	}
	return nil
}

// Logout invalidates the session token on the backend.
func (c *hydraClient) Logout(ctx context.Context) error {
	resp, err := c.get(ctx, "/user/logout")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend logout returned %s", resp.Status)
	}
	return nil
}

type countriesResponse struct {
	Result    string `json:"result"`
	Countries []struct {
		Country string `json:"country"`
	} `json:"countries"`
	Error string `json:"error"`
}

// GetCountries lists the countries available to this session.
func (c *hydraClient) GetCountries(ctx context.Context) (CountriesResult, error) {
	resp, err := c.get(ctx, "/user/countries")
	if err != nil {
		return CountriesResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return CountriesResult{}, fmt.Errorf("country list request returned %s", resp.Status)
	}

	var parsed countriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return CountriesResult{}, err
	}
	if parsed.Result != "OK" {
		return CountriesResult{IsSuccess: false, Error: parsed.Error}, nil
	}

	countries := make([]string, 0, len(parsed.Countries))
	for _, entry := range parsed.Countries {
		countries = append(countries, entry.Country)
	}
	return CountriesResult{IsSuccess: true, Countries: countries}, nil
}

type trafficResponse struct {
	Result           string `json:"result"`
	TrafficUnlimited bool   `json:"traffic_unlimited"`
	TrafficUsed      uint64 `json:"traffic_used"`
	TrafficRemaining uint64 `json:"traffic_remaining"`
}

// GetRemainingTraffic reports the session's traffic quota.
func (c *hydraClient) GetRemainingTraffic(ctx context.Context) (RemainingTraffic, error) {
	resp, err := c.get(ctx, "/user/remaining_traffic")
	if err != nil {
		return RemainingTraffic{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return RemainingTraffic{}, fmt.Errorf("traffic request returned %s", resp.Status)
	}

	var parsed trafficResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return RemainingTraffic{}, err
	}
	if parsed.Result != "OK" {
		return RemainingTraffic{IsSuccess: false}, nil
	}

	return RemainingTraffic{
		IsSuccess:   true,
		IsUnlimited: parsed.TrafficUnlimited,
		Used:        parsed.TrafficUsed,
		Remaining:   parsed.TrafficRemaining,
	}, nil
}

func (c *hydraClient) get(ctx context.Context, path string) (*http.Response, error) {
	endpoint := c.cfg.BackendURL + path + "?access_token=" + url.QueryEscape(c.cfg.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

// monitorStatus reads the service's status stream line by line.
// Recognized lines:
//
//	state connected
//	state disconnected
//	stats <bytes-sent> <bytes-received>
func (c *hydraClient) monitorStatus(pipe io.Reader) {
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		switch fields[0] {
		case "state":
			switch fields[1] {
			case "connected":
				c.fireConnected(true)
			case "disconnected":
				c.fireConnected(false)
			}
		case "stats":
			if len(fields) < 3 {
				continue
			}
			sent, errSent := strconv.ParseUint(fields[1], 10, 64)
			received, errRecv := strconv.ParseUint(fields[2], 10, 64)
			if errSent != nil || errRecv != nil {
				c.log.Trace("Malformed stats line: %q", line)
				continue
			}
			c.log.Trace("Traffic: %s sent, %s received",
				common.FormatBytes(sent), common.FormatBytes(received))
			c.fireStats(sent, received)
		}
	}
}

// waitForExit reaps the tunnel process. An exit that was not requested
// through StopVpn means the tunnel dropped.
func (c *hydraClient) waitForExit(cmd *exec.Cmd) {
	err := cmd.Wait()

	c.mu.Lock()
	requested := c.stopping
	if c.cmd == cmd {
		c.cmd = nil
	}
	c.mu.Unlock()

	if requested {
		return
	}
	if err != nil {
		c.log.Warn("Tunnel process exited: %v", err)
	}
	c.fireConnected(false)
}

func (c *hydraClient) fireConnected(connected bool) {
	c.mu.Lock()
	handler := c.onConnected
	c.mu.Unlock()
	if handler != nil {
		handler(connected)
	}
}

func (c *hydraClient) fireStats(sent, received uint64) {
	c.mu.Lock()
	handler := c.onStats
	c.mu.Unlock()
	if handler != nil {
		handler(sent, received)
	}
}
