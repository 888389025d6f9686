package bootstrap

import (
	"context"

	"github.com/GregMSThompson/pitch-backend/internal/config"
	"github.com/GregMSThompson/pitch-backend/internal/store"
)

// ResolveOpenWebUIKey returns the configured key, falling back to Secret
// Manager when only a secret name is set.
func (bs *Bootstrap) ResolveOpenWebUIKey(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.OpenWebUIAPIKey != "" || cfg.OpenWebUISecret == "" || bs.Secrets == nil {
		return cfg.OpenWebUIAPIKey, nil
	}
	return store.NewSecretsStore(bs.Secrets, cfg.ProjectID).GetSecret(ctx, cfg.OpenWebUISecret)
}
