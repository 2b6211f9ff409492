package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"reeltrack/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy onto exit statuses: 2 for caller
// mistakes, 3 for state that was not ready, 1 for everything else.
func exitCode(err error) int {
	switch services.Kind(err) {
	case "validation", "not_found":
		return 2
	case "precondition", "conflict":
		return 3
	default:
		return 1
	}
}
