// Handles process lifecycle concerns around the relay (signals, service manager notifications)
package lifecycle

import (
	"context"
	"fmt"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"net"
	"os"
	"strings"
)

// Sends READY=1 to systemd to indicate the relay is accepting input.
func NotifyReady(ctx context.Context) (err error) {
	err = notify(ctx, ReadyMessage)
	return
}

// Sends STOPPING=1 with a final status to systemd.
func NotifyStopping(ctx context.Context, status string) (err error) {
	msg := StoppingMessage
	if status != "" {
		msg += "\nSTATUS=" + sanitizeStatus(status)
	}
	err = notify(ctx, msg)
	return
}

// Sends custom status message to systemd for context.
func NotifyStatus(ctx context.Context, status string) (err error) {
	err = notify(ctx, "STATUS="+sanitizeStatus(status))
	return
}

// Status is a single line assignment
func sanitizeStatus(status string) (clean string) {
	clean = strings.ReplaceAll(status, "\n", " ")
	return
}

// Sends a raw sd_notify message.
// If NOTIFY_SOCKET is unset, this is a no-op and returns nil.
func notify(ctx context.Context, msg string) (err error) {
	sockPath := os.Getenv(EnvNameNotifySocket)
	if sockPath == "" {
		// Not running under systemd
		return
	}
	if strings.HasPrefix(sockPath, "@") {
		// Abstract namespace socket
		sockPath = "\x00" + sockPath[1:]
	}

	addr := &net.UnixAddr{
		Name: sockPath,
		Net:  "unixgram",
	}

	conn, err := net.DialUnix("unixgram", nil, addr)
	if err != nil {
		err = fmt.Errorf("notify dial failed: %w", err)
		return
	}
	defer conn.Close()

	_, err = conn.Write([]byte(msg))
	if err != nil {
		err = fmt.Errorf("notify write failed: %w", err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog,
		"Successfully notified systemd with message '%s'\n", msg)
	return
}
