package main

import (
	"fmt"
)

// Run executes the targets command.
func (c *TargetsCmd) Run(deps *Dependencies) error {
	for _, src := range deps.Config.Sources {
		state := "enabled"
		if !src.Enabled {
			state = "disabled"
		}
		discovery := src.Discovery
		if discovery == "" {
			discovery = "selectors"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", src.Name, src.Type, discovery, state)
	}
	return nil
}
