package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"notehub/internal/config"
	"notehub/internal/noteaccess"
	"notehub/internal/notes"
	"notehub/internal/storage"
)

const tokenEnv = "NOTEHUB_API_TOKEN"

// errSilentExit fails the command without printing anything further; the
// command has already reported the problem.
var errSilentExit = errors.New("silent exit")

type commandContext struct {
	configFlag *string
	apiFlag    *string
	tokenFlag  *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, apiFlag, tokenFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiFlag:    apiFlag,
		tokenFlag:  tokenFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) apiBind(cfg *config.Config) string {
	if bind := flagValue(c.apiFlag); bind != "" {
		return bind
	}
	if cfg == nil {
		return ""
	}
	return cfg.Paths.APIBind
}

func (c *commandContext) token() string {
	if token := flagValue(c.tokenFlag); token != "" {
		return token
	}
	return strings.TrimSpace(os.Getenv(tokenEnv))
}

// withAccess runs fn against the daemon API when it answers, or against the
// note store otherwise.
func (c *commandContext) withAccess(cmd *cobra.Command, fn func(noteaccess.Access) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	ctx := commandCtx(cmd)

	client, dialErr := noteaccess.Dial(ctx, c.apiBind(cfg), c.token())
	if dialErr != nil && !noteaccess.IsAPIUnavailable(dialErr) {
		return fmt.Errorf("connect to daemon: %w", dialErr)
	}

	session, err := noteaccess.OpenWithFallback(
		cfg,
		func() (*noteaccess.Client, error) { return client, dialErr },
		func() (notes.Store, error) { return storage.Open(ctx, cfg) },
	)
	if err != nil {
		return err
	}
	defer session.Close()
	return fn(session.Access)
}

// withStore opens the note store directly, regardless of whether the daemon
// is running.
func (c *commandContext) withStore(cmd *cobra.Command, fn func(*config.Config, notes.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := storage.Open(commandCtx(cmd), cfg)
	if err != nil {
		return fmt.Errorf("open note store: %w", err)
	}
	defer store.Close()
	return fn(cfg, store)
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func flagValue(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
