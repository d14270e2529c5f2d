package cli

import (
	"context"
	"fmt"
	"io"
	"logpush/internal/externalio/stdin"
	"logpush/internal/global"
	"logpush/internal/lifecycle"
	"logpush/internal/logctx"
	"logpush/internal/relay"
	"os"
)

// Builds the relay config from the optional file, CLI overrides and positional type
func buildConfig(opts RelayOptions, positional []string) (cfg relay.Config, err error) {
	if len(positional) > 1 {
		err = fmt.Errorf("expected at most one message type argument, got %d", len(positional))
		return
	}

	if opts.ConfigPath != "" {
		var jsonCfg relay.JSONConfig
		jsonCfg, err = relay.LoadConfig(opts.ConfigPath)
		if err != nil {
			return
		}
		cfg, err = jsonCfg.NewRelayConf()
		if err != nil {
			return
		}
	}

	// CLI wins over file values
	if len(positional) == 1 {
		cfg.MessageType = positional[0]
	}
	if opts.Transport != "" {
		if cfg.TransportKind != opts.Transport {
			// endpoint from the file belongs to the other transport
			cfg.Endpoint = ""
		}
		cfg.TransportKind = opts.Transport
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	if opts.EscapeMode != "" {
		cfg.EscapeMode = opts.EscapeMode
	}

	cfg.SetDefaults()
	err = cfg.Validate()
	return
}

// Runs one relay over input, writing the summary line to output. Returns the process exit code.
func RelayMode(ctx context.Context, opts RelayOptions, positional []string, input *os.File, output io.Writer) (exitCode int) {
	ctx = logctx.AppendCtxTag(ctx, global.NSCLI)

	cfg, err := buildConfig(opts, positional)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Configuration error: %v\n", err)
		exitCode = 1
		return
	}
	global.PID = os.Getpid()

	if stdin.IsInteractive(input) {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Reading from a terminal, end input with Ctrl-D\n")
	}

	source, err := stdin.Open(ctx, input)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed to open input: %v\n", err)
		fmt.Fprintln(output, relay.Summary{PID: global.PID}.String())
		exitCode = 1
		return
	}

	relayInst, err := relay.New(cfg, source, newOpener(cfg))
	if err != nil {
		_ = source.Close()
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed to create relay: %v\n", err)
		fmt.Fprintln(output, relay.Summary{PID: global.PID}.String())
		exitCode = 1
		return
	}

	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()

	// Signals end the relay, the handler itself lives until this function returns
	signalCtx, stopSignals := context.WithCancel(ctx)
	defer stopSignals()
	go lifecycle.SignalHandler(signalCtx, stopRelay)

	go func() {
		select {
		case <-relayInst.Ready():
			err := lifecycle.NotifyReady(ctx)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify ready failed: %v\n", err)
			}
		case <-relayCtx.Done():
		}
	}()

	summary, err := relayInst.Run(relayCtx)

	// Summary is printed on every path once the relay ran
	fmt.Fprintln(output, summary.String())

	notifyErr := lifecycle.NotifyStopping(ctx, summary.String())
	if notifyErr != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify stopping failed: %v\n", notifyErr)
	}

	if err != nil {
		exitCode = 1
		return
	}
	return
}
