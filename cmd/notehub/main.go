package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, errSilentExit) {
			fmt.Fprintln(os.Stderr, "notehub:", err)
		}
		os.Exit(1)
	}
}
