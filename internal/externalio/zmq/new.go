// ZeroMQ PUSH transport sink
package zmq

import (
	"context"
	"fmt"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"logpush/internal/transport"
	"strings"

	"github.com/zeromq/goczmq"
)

const defaultSendHWM int = 1000

var supportedSchemes = []string{"tcp://", "ipc://", "inproc://", "pgm://", "epgm://"}

// Validates endpoint and returns a dialer creating connected PUSH sockets
func NewDialer(endpoint string, opts Options) (dialer transport.Dialer, err error) {
	err = validateEndpoint(endpoint)
	if err != nil {
		return
	}
	opts = setDefaults(opts)

	dialer = func(ctx context.Context) (sink transport.Sink, err error) {
		ctx = logctx.AppendCtxTag(ctx, global.NSoZmq)
		sink, err = dial(ctx, endpoint, opts)
		return
	}
	return
}

func setDefaults(old Options) (new Options) {
	new = old
	if new.ReconnectInterval <= 0 {
		new.ReconnectInterval = global.DefaultReconnectInterval
	}
	if new.SendTimeout <= 0 {
		new.SendTimeout = global.DefaultSendTimeout
	}
	if new.SendHWM <= 0 {
		new.SendHWM = defaultSendHWM
	}
	if new.Linger < 0 {
		new.Linger = 0
	}
	return
}

// Socket options for a PUSH sink, linger is applied when the socket is destroyed
func socketOptions(opts Options) (sockOpts []goczmq.SockOption) {
	sockOpts = []goczmq.SockOption{
		goczmq.SockSetReconnectIvl(int(opts.ReconnectInterval.Milliseconds())),
		goczmq.SockSetLinger(int(opts.Linger.Milliseconds())),
		goczmq.SockSetSndhwm(opts.SendHWM),
		goczmq.SockSetSndtimeo(int(opts.SendTimeout.Milliseconds())),
	}
	return
}

func validateEndpoint(endpoint string) (err error) {
	if endpoint == "" {
		err = fmt.Errorf("zmq endpoint is empty")
		return
	}
	for _, scheme := range supportedSchemes {
		if strings.HasPrefix(endpoint, scheme) && len(endpoint) > len(scheme) {
			return
		}
	}
	err = fmt.Errorf("invalid zmq endpoint '%s' (expected one of %s followed by an address)",
		endpoint, strings.Join(supportedSchemes, ", "))
	return
}

// Creates the socket and starts an asynchronous connect
func dial(ctx context.Context, endpoint string, opts Options) (new *Sink, err error) {
	sock := goczmq.NewSock(goczmq.Push, socketOptions(opts)...)

	err = sock.Connect(endpoint)
	if err != nil {
		sock.Destroy()
		err = fmt.Errorf("failed to connect push socket to '%s': %w", endpoint, err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Push socket connecting to %s (reconnect interval %v, linger %v)\n", endpoint, opts.ReconnectInterval, opts.Linger)

	new = &Sink{
		endpoint: endpoint,
		sock:     sock,
	}
	return
}
