package main

import (
	"context"
	"errors"
	"flag"
	"logpush/internal/cli"
	"logpush/internal/global"
	"logpush/internal/logctx"
	"os"
)

func main() {
	cliOpts := cli.DefineOptions()
	global.CmdOpts = cliOpts

	var relayOpts cli.RelayOptions
	commandFlags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	cli.SetGlobalArguments(commandFlags)
	cli.SetRelayArguments(commandFlags, &relayOpts)

	commandFlags.Usage = func() {
		cli.PrintHelpMenu(os.Stderr, commandFlags, cli.RootCLICommand, cliOpts)
	}
	err := commandFlags.Parse(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		os.Exit(1)
	}

	if relayOpts.ShowVersion {
		cli.PrintVersion(os.Stdout)
		os.Exit(0)
	}

	// Setting global logging
	ctx, cancel := context.WithCancel(context.Background())
	logger := logctx.NewLogger("global", global.Verbosity, ctx.Done()) // New logger tied to global
	ctx = logctx.WithLogger(ctx, logger)                               // Add logger to global ctx
	logctx.StartWatcher(logger, os.Stderr)                             // stdout is reserved for the summary

	exitCode := cli.RelayMode(ctx, relayOpts, commandFlags.Args(), os.Stdin, os.Stdout)

	// Finish up any writes for global logger
	cancel()
	logger.Wake()
	logger.Wait()
	os.Exit(exitCode)
}
