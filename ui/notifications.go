package ui

import (
	"github.com/godbus/dbus/v5"

	"github.com/stojanovic-vukas/vpn-demo/common"
)

const (
	notifyService   = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyMethod    = "org.freedesktop.Notifications.Notify"
	notifyTimeoutMs = 5000
)

// DBusNotifier delivers desktop notifications over the session bus.
// Delivery failures are logged and otherwise ignored; notifications
// are never load-bearing.
type DBusNotifier struct {
	conn *dbus.Conn
	log  common.Logger
}

// NewDBusNotifier connects to the session bus.
func NewDBusNotifier() (*DBusNotifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, common.WrapError(err, "could not connect to session bus")
	}
	return &DBusNotifier{conn: conn, log: common.GetLogger()}, nil
}

// Notify shows a desktop notification.
func (n *DBusNotifier) Notify(title, message string) {
	obj := n.conn.Object(notifyService, notifyPath)
	call := obj.Call(notifyMethod, 0,
		common.AppName,
		uint32(0),
		"network-vpn",
		title,
		message,
		[]string{},
		map[string]dbus.Variant{},
		int32(notifyTimeoutMs),
	)
	if call.Err != nil {
		n.log.Warn("Could not send notification: %v", call.Err)
	}
}

// Close releases the bus connection.
func (n *DBusNotifier) Close() error {
	return n.conn.Close()
}
