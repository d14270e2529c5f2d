package cli

import "logpush/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	root := &global.CommandSet{
		Description:     "Log Push Relay (logpush)",
		FullDescription: "  Reads lines from standard input and pushes them as JSON records to a log collector",
		CommandName:     RootCLICommand,
		UsageOption:     "[options] [type]",
		ChildCommands:   nil,
	}

	cmdOpts = root
	return
}
