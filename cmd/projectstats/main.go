// Command projectstats computes dashboard statistics and filtered project
// listings from an export file, without a database.
//
// Usage:
//
//	projectstats stats projects.json
//	projectstats list --status in_progress --sort totalCost --order desc projects.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
