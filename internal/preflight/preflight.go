package preflight

import (
	"context"

	"notehub/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunFeatureChecks executes the checks that apply to the enabled stages:
// directory access always, binaries when transcription is enabled and an
// endpoint probe when the LLM is configured.
func RunFeatureChecks(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Inbox directory", cfg.Paths.InboxDir),
		CheckDirectoryAccess("Vault directory", cfg.Paths.VaultDir),
	}
	if cfg.Transcription.Enabled {
		results = append(results, CheckBinaries(cfg)...)
	}
	if cfg.LLM.Enabled && cfg.LLM.BaseURL != "" && cfg.LLM.Model != "" {
		results = append(results, CheckLLM(ctx, "Extraction LLM", cfg.LLM))
	}
	return results
}

// Names used by RunHealthChecks.
const (
	HealthDatabase = "database"
	HealthInbox    = "inbox"
	HealthVault    = "vault"
)

// RunHealthChecks covers what the running system needs right now: the store
// answers a ping and the inbox and vault directories are writable.
func RunHealthChecks(ctx context.Context, cfg *config.Config, db Pinger) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDatabase(ctx, HealthDatabase, db),
		CheckDirectoryAccess(HealthInbox, cfg.Paths.InboxDir),
		CheckDirectoryAccess(HealthVault, cfg.Paths.VaultDir),
	}
}
