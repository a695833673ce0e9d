package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `KekeLink safety hub

Usage:
  kekelink [-config-path <file>] [-issue-admin-token <id>]
  kekelink -help

Options:
  -config-path         YAML config file (default: config.yaml)
  -issue-admin-token   print an admin access token for the given user id and exit
  -help                show this message

Every option in the config file can be overridden by its environment
variable, e.g. SERVER_PORT=8080 or REDIS_ENABLED=false.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}
