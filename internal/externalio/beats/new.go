// Logstash Beats (lumberjack v2) transport sink
package beats

import (
	"context"
	"fmt"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"logpush/internal/transport"
	"net"
)

// Validates endpoint and returns a dialer producing lazily connected sinks
func NewDialer(endpoint string, opts Options) (dialer transport.Dialer, err error) {
	if endpoint == "" {
		err = fmt.Errorf("beats endpoint is empty")
		return
	}
	_, port, err := net.SplitHostPort(endpoint)
	if err != nil {
		err = fmt.Errorf("invalid beats endpoint '%s': %w", endpoint, err)
		return
	}
	if port == "" {
		err = fmt.Errorf("invalid beats endpoint '%s': missing port", endpoint)
		return
	}
	if opts.Timeout <= 0 {
		opts.Timeout = global.DefaultSendTimeout
	}

	dialer = func(ctx context.Context) (sink transport.Sink, err error) {
		ctx = logctx.AppendCtxTag(ctx, global.NSoBeats)
		logctx.LogEvent(ctx, global.VerbosityDebug, global.InfoLog,
			"Prepared beats sink for %s\n", endpoint)
		sink = &Sink{
			endpoint: endpoint,
			opts:     opts,
		}
		return
	}
	return
}
