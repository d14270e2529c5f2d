package cli

import (
	"flag"
	"logpush/internal/global"
)

// Command line overrides for the relay
type RelayOptions struct {
	ConfigPath  string
	Endpoint    string
	Transport   string
	EscapeMode  string
	ShowVersion bool
}

func SetGlobalArguments(fs *flag.FlagSet) {
	fs.IntVar(&global.Verbosity, "v", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	fs.IntVar(&global.Verbosity, "verbosity", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
}

func SetCommon(fs *flag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "c", "", "Path to the configuration file")
	fs.StringVar(configPath, "config", "", "Path to the configuration file")
}

func SetRelayArguments(fs *flag.FlagSet, opts *RelayOptions) {
	SetCommon(fs, &opts.ConfigPath)
	fs.StringVar(&opts.Endpoint, "e", "", "Transport endpoint (overrides config)")
	fs.StringVar(&opts.Endpoint, "endpoint", "", "Transport endpoint (overrides config)")
	fs.StringVar(&opts.Transport, "t", "", "Transport kind <zmq|beats|kafka> (overrides config)")
	fs.StringVar(&opts.Transport, "transport", "", "Transport kind <zmq|beats|kafka> (overrides config)")
	fs.StringVar(&opts.EscapeMode, "escape", "", "Quote handling in records <backslash|substitute> (overrides config)")
	fs.BoolVar(&opts.ShowVersion, "version", false, "Show version information and exit")
}
