package vpn

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/stojanovic-vukas/vpn-demo/auth"
	"github.com/stojanovic-vukas/vpn-demo/common"
	"github.com/stojanovic-vukas/vpn-demo/config"
)

// Preflight gates every VPN operation on the privileged OS
// dependencies being installed.
type Preflight interface {
	EnsureAll(ctx context.Context) error
}

// Authenticator performs one login attempt and returns an access token.
type Authenticator interface {
	Login(ctx context.Context, creds auth.Credentials, deviceID, priorToken string) (string, error)
}

// Snapshot is a read-only view of the session handed to observers.
// Byte counters are rendered as decimal strings for direct display.
type Snapshot struct {
	AuthState        AuthState
	ConnState        ConnState
	DeviceID         string
	SelectedCountry  string
	Countries        []string
	BytesSent        string
	BytesReceived    string
	RemainingTraffic string
	ErrorText        string
	ErrorVisible     bool
	UI               UIState
}

// Controller owns the single Session of the running application and is
// the only writer of its state. User commands (Login, Logout, Connect,
// Disconnect) and client events are serialized through its mutex, so no
// two transitions run concurrently. The VPN client handle is owned for
// the duration of one logged-in period and replaced with a fresh one on
// the next login.
type Controller struct {
	mu sync.Mutex

	cfg           *config.Config
	gate          Preflight
	authenticator Authenticator
	factory       ClientFactory
	notifier      common.Notifier
	log           common.Logger
	poller        *TelemetryPoller

	client   Client
	deviceID string

	authState        AuthState
	connState        ConnState
	accessToken      string
	selectedCountry  string
	countries        []string
	bytesSent        uint64
	bytesReceived    uint64
	remainingTraffic string
	errorText        string
	errorVisible     bool

	onChange func(Snapshot)
	onFatal  func(error)
}

// NewController creates the session controller. The device id is
// derived from the stable machine identity plus the current date, as
// the backend expects.
func NewController(cfg *config.Config, gate Preflight, authenticator Authenticator, factory ClientFactory) *Controller {
	c := &Controller{
		cfg:           cfg,
		gate:          gate,
		authenticator: authenticator,
		factory:       factory,
		log:           common.GetLogger(),
		deviceID:      common.GetStableID() + "-" + time.Now().Format("02-01-06"),
		countries:     []string{""},
	}
	c.poller = NewTelemetryPoller(cfg.TrafficPollInterval, c.currentToken, c.fetchTraffic, c.publishTraffic)
	return c
}

// SetOnChange registers the observer receiving a snapshot after every
// state change. Must be set before Start.
func (c *Controller) SetOnChange(handler func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = handler
}

// SetOnFatal registers the handler for terminal failures (failed
// privileged installs). The handler is expected to end the process.
func (c *Controller) SetOnFatal(handler func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFatal = handler
}

// SetNotifier registers an optional desktop notifier for connection
// events.
func (c *Controller) SetNotifier(n common.Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifier = n
}

// Start launches the telemetry poller. The poller runs for the life of
// the application; its effect is gated on token presence.
func (c *Controller) Start() {
	c.poller.Start()
}

// Close stops the poller and releases the client handle if any.
func (c *Controller) Close() {
	c.poller.Stop()

	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()

	if client != nil {
		client.Close()
	}
}

// Snapshot returns the current session view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Login runs the full login transition: preflight, authentication,
// client bootstrap, event subscription, country list. A re-entrant
// call while a login is in flight is rejected, not queued. Preflight
// failure is fatal; authentication failure reverts to LoggedOut with
// the error surfaced and the login affordance re-enabled.
func (c *Controller) Login(ctx context.Context, creds auth.Credentials) error {
	c.mu.Lock()
	switch c.authState {
	case LoggingIn:
		c.mu.Unlock()
		return common.ErrLoginInProgress
	case LoggedIn, LoggingOut:
		c.mu.Unlock()
		return common.ErrAlreadyLoggedIn
	}
	priorToken := c.accessToken
	deviceID := c.deviceID
	c.authState = LoggingIn
	c.errorText = ""
	c.errorVisible = false
	c.mu.Unlock()
	c.emitChange()

	if err := c.gate.EnsureAll(ctx); err != nil {
		c.log.Error("Preflight failed: %v", err)
		c.failLogin(err)

		c.mu.Lock()
		onFatal := c.onFatal
		c.mu.Unlock()
		if onFatal != nil {
			onFatal(err)
		}
		return err
	}

	token, err := c.authenticator.Login(ctx, creds, deviceID, priorToken)
	if err != nil {
		c.log.Error("Login failed: %v", err)
		c.failLogin(err)
		return err
	}

	client, err := c.factory.New(ClientConfig{
		CarrierID:         c.cfg.CarrierID,
		BackendURL:        c.cfg.BackendURL,
		DeviceID:          deviceID,
		ServiceName:       c.cfg.ServiceName,
		AccessToken:       token,
		BypassDomains:     c.cfg.BypassDomains,
		ReconnectOnWakeUp: c.cfg.ReconnectOnWakeUp,
	})
	if err != nil {
		c.log.Error("VPN bootstrap failed: %v", err)
		c.failLogin(err)
		return err
	}

	// Subscription must complete before LoggedIn is observable, so
	// Connect/Disconnect can never race an unsubscribed client.
	client.SetOnConnectedChanged(func(connected bool) {
		c.handleConnectedChanged(client, connected)
	})
	client.SetOnStatisticsChanged(func(sent, received uint64) {
		c.handleStatisticsChanged(client, sent, received)
	})

	countries, countriesErr := c.fetchCountries(ctx, client)

	c.mu.Lock()
	c.client = client
	c.accessToken = token
	c.authState = LoggedIn
	c.connState = Disconnected
	c.countries = countries
	if countriesErr != nil {
		// Best effort: surface the error but keep the session.
		c.errorText = countriesErr.Error()
		c.errorVisible = true
	}
	c.mu.Unlock()
	c.emitChange()

	c.log.Info("Login successful, session established for device %s", deviceID)
	return nil
}

// Logout runs the logout transition. A failing backend logout keeps
// the session logged in so the user may retry; on success every
// derived field is cleared and the client handle is discarded.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	switch c.authState {
	case LoggingOut:
		c.mu.Unlock()
		return common.ErrLogoutInProgress
	case LoggedOut, LoggingIn:
		c.mu.Unlock()
		return common.ErrNotLoggedIn
	}
	client := c.client
	c.authState = LoggingOut
	c.errorText = ""
	c.errorVisible = false
	c.mu.Unlock()
	c.emitChange()

	if err := client.Logout(ctx); err != nil {
		c.log.Error("Logout failed: %v", err)
		c.mu.Lock()
		c.authState = LoggedIn
		c.errorText = err.Error()
		c.errorVisible = true
		c.mu.Unlock()
		c.emitChange()
		return err
	}

	client.Close()

	c.mu.Lock()
	c.client = nil
	c.accessToken = ""
	c.remainingTraffic = ""
	c.bytesSent = 0
	c.bytesReceived = 0
	c.countries = []string{""}
	c.selectedCountry = ""
	c.connState = Disconnected
	c.authState = LoggedOut
	c.mu.Unlock()
	c.emitChange()

	c.log.Info("Logout successful")
	return nil
}

// Connect requests a tunnel to the given country. Valid only while
// logged in; a failing start call surfaces the error and reverts the
// connection state. The asynchronous connected event is the sole
// authority for reaching Connected.
func (c *Controller) Connect(ctx context.Context, country string) error {
	c.mu.Lock()
	if c.authState != LoggedIn {
		c.mu.Unlock()
		return common.ErrNotLoggedIn
	}
	switch c.connState {
	case Connecting:
		c.mu.Unlock()
		return common.ErrConnectInProgress
	case Connected:
		c.mu.Unlock()
		return common.ErrAlreadyConnected
	case Disconnecting:
		c.mu.Unlock()
		return common.ErrDisconnectInProgress
	}
	client := c.client
	c.connState = Connecting
	c.selectedCountry = country
	c.errorText = ""
	c.errorVisible = false
	c.mu.Unlock()
	c.emitChange()

	if err := client.StartVpn(ctx, country); err != nil {
		c.log.Error("StartVpn failed: %v", err)
		c.mu.Lock()
		if c.connState == Connecting {
			c.connState = Disconnected
		}
		c.errorText = err.Error()
		c.errorVisible = true
		c.mu.Unlock()
		c.emitChange()
		return err
	}

	return nil
}

// Disconnect tears the tunnel down. Whatever the stop call's outcome,
// the user-visible state is Disconnected afterwards and the byte
// counters are reset; a stop failure is logged and surfaced as error
// text but never blocks the transition.
func (c *Controller) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.authState != LoggedIn {
		c.mu.Unlock()
		return common.ErrNotLoggedIn
	}
	if c.connState == Disconnecting {
		c.mu.Unlock()
		return common.ErrDisconnectInProgress
	}
	client := c.client
	c.connState = Disconnecting
	c.mu.Unlock()
	c.emitChange()

	err := client.StopVpn(ctx)

	c.mu.Lock()
	c.connState = Disconnected
	c.bytesSent = 0
	c.bytesReceived = 0
	if err != nil {
		c.log.Error("StopVpn failed: %v", err)
		c.errorText = err.Error()
		c.errorVisible = true
	}
	c.mu.Unlock()
	c.emitChange()

	return nil
}

// handleConnectedChanged reconciles the client's tunnel state event
// into the session. Events from a discarded client handle are dropped,
// and a connected event that arrives after a more recent explicit
// disconnect is stale and must not resurrect the connected state.
func (c *Controller) handleConnectedChanged(source Client, connected bool) {
	c.mu.Lock()
	if source != c.client {
		c.mu.Unlock()
		return
	}

	if connected {
		if c.connState == Disconnected || c.connState == Disconnecting {
			c.mu.Unlock()
			c.log.Trace("Ignoring stale connected event")
			return
		}
		c.connState = Connected
	} else {
		// Counters are deliberately kept: only an explicit disconnect
		// resets them.
		c.connState = Disconnected
	}
	notifier := c.notifier
	c.mu.Unlock()
	c.emitChange()

	if connected {
		c.log.Info("VPN connected")
	} else {
		c.log.Info("VPN disconnected")
	}

	if notifier != nil {
		if connected {
			notifier.Notify(common.AppName, "VPN connected")
		} else {
			notifier.Notify(common.AppName, "VPN disconnected")
		}
	}
}

// handleStatisticsChanged records the last-known traffic counters.
// No state change, no history.
func (c *Controller) handleStatisticsChanged(source Client, bytesSent, bytesReceived uint64) {
	c.mu.Lock()
	if source != c.client {
		c.mu.Unlock()
		return
	}
	c.bytesSent = bytesSent
	c.bytesReceived = bytesReceived
	c.mu.Unlock()
	c.emitChange()
}

// fetchCountries retrieves the country list for the fresh session. The
// leading empty entry means "best available".
func (c *Controller) fetchCountries(ctx context.Context, client Client) ([]string, error) {
	result, err := client.GetCountries(ctx)
	if err != nil {
		return []string{""}, err
	}
	if !result.IsSuccess {
		return []string{""}, common.WrapError(common.ErrConnectionFailed, result.Error)
	}

	countries := make([]string, 0, len(result.Countries)+1)
	countries = append(countries, "")
	countries = append(countries, result.Countries...)
	return countries, nil
}

// failLogin reverts a failed login attempt to the logged-out state
// with the error surfaced and the login affordance re-enabled.
func (c *Controller) failLogin(err error) {
	c.mu.Lock()
	c.authState = LoggedOut
	c.errorText = err.Error()
	c.errorVisible = true
	c.mu.Unlock()
	c.emitChange()
}

// currentToken reports the session's access token for the poller.
func (c *Controller) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// fetchTraffic performs one remaining-traffic request against the
// current client.
func (c *Controller) fetchTraffic(ctx context.Context) (RemainingTraffic, error) {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()

	if client == nil {
		return RemainingTraffic{}, common.ErrNotLoggedIn
	}
	return client.GetRemainingTraffic(ctx)
}

// publishTraffic records the formatted traffic display string.
func (c *Controller) publishTraffic(display string) {
	c.mu.Lock()
	c.remainingTraffic = display
	c.mu.Unlock()
	c.emitChange()
}

// emitChange delivers a fresh snapshot to the observer, outside the
// lock so the observer may call back into the controller.
func (c *Controller) emitChange() {
	c.mu.Lock()
	handler := c.onChange
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if handler != nil {
		handler(snap)
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	countries := make([]string, len(c.countries))
	copy(countries, c.countries)

	return Snapshot{
		AuthState:        c.authState,
		ConnState:        c.connState,
		DeviceID:         c.deviceID,
		SelectedCountry:  c.selectedCountry,
		Countries:        countries,
		BytesSent:        strconv.FormatUint(c.bytesSent, 10),
		BytesReceived:    strconv.FormatUint(c.bytesReceived, 10),
		RemainingTraffic: c.remainingTraffic,
		ErrorText:        c.errorText,
		ErrorVisible:     c.errorVisible,
		UI:               DeriveUIState(c.authState, c.connState),
	}
}
