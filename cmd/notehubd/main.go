// Command notehubd runs the notehub daemon without the CLI. It reads the
// configuration path from NOTEHUB_CONFIG and an optional log level override
// from NOTEHUB_LOG_LEVEL, which suits systemd units and containers.
package main

import (
	"context"
	"log"
	"os"

	"notehub/internal/config"
	"notehub/internal/daemonrun"
)

func main() {
	path, opts := optionsFromEnv(os.Getenv)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, opts); err != nil {
		log.Fatalf("notehubd: %v", err)
	}
}
