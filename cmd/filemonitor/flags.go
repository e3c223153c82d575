package main

import (
	"github.com/jessevdk/go-flags"
)

// AppFlags are the command line options.
type AppFlags struct {
	ConfigFile     string `short:"c" long:"config" description:"Path to the YAML configuration file. If not set, searches default locations."`
	EnvFile        string `short:"e" long:"env-file" description:"Path to a dotenv file applied before the process environment" default:".env"`
	DiscoverChatID bool   `long:"discover-chat-id" description:"Print chats that recently messaged the bot and exit"`
	Once           bool   `long:"once" description:"Run a single check cycle, send a status report and exit"`
	Version        bool   `short:"v" long:"version" description:"Print the version and exit"`
}

// ParseFlags parses args. helpShown is true when --help was printed.
func ParseFlags(args []string) (opts AppFlags, helpShown bool, err error) {
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS]"

	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			return opts, true, nil
		}
		return opts, false, err
	}
	return opts, false, nil
}
