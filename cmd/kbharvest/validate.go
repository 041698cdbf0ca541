package main

import (
	"fmt"

	"kbharvest"
)

// Run executes the validate command.
func (c *ValidateCmd) Run(deps *Dependencies) error {
	invalid := 0
	for _, src := range deps.Config.Sources {
		if err := src.Validate(); err != nil {
			invalid++
			fmt.Fprintf(deps.Stdout, "%s: %s\n", src.Name, kbharvest.ErrorMessage(err))
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s: ok\n", src.Name)
	}

	if invalid > 0 {
		return kbharvest.Errorf(kbharvest.ECONFIG, "%d invalid source(s)", invalid)
	}
	fmt.Fprintf(deps.Stdout, "Configuration valid: %d source(s)\n", len(deps.Config.Sources))
	return nil
}
