// internal/secrets/secrets.go
//
// Vault-backed secret resolution for configuration values.
//
// Context
// -------
// Operators keep non-secret configuration in `conf/global.yaml` and point
// secret fields at Vault with the `vault:` scheme:
//
//	auth:
//	  secret_key: "vault:secret/data/stocklot#jwt_secret"
//
// `Resolve` is called once at boot for each such field; the plain string
// is what the rest of the app sees.  Values without the prefix pass
// through untouched, so Vault stays optional for development.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault-token).
//
// Notes
// -----
// • The client is safe for concurrent use and caches each key for the
//   process lifetime; secrets are only read during startup paths.
// • Oxford commas, two spaces after periods.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	vault "github.com/hashicorp/vault/api"
)

const prefix = "vault:"

// Client wraps the Vault API client with a per-key cache.
type Client struct {
	api *vault.Client

	mu    sync.RWMutex
	cache map[string]string // "path#key" → value
}

// New constructs a Vault client from the standard VAULT_* environment.
func New() (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	return &Client{api: apiCli, cache: make(map[string]string)}, nil
}

// IsRef reports whether value uses the `vault:` scheme.
func IsRef(value string) bool { return strings.HasPrefix(value, prefix) }

// Resolve returns value unchanged unless it is a `vault:` reference, in
// which case the referenced KV-v2 key is fetched.  A nil client with a
// reference value is a configuration error.
func (c *Client) Resolve(ctx context.Context, value string) (string, error) {
	if !IsRef(value) {
		return value, nil
	}
	if c == nil {
		return "", errors.New("secrets: vault reference used but no Vault client configured")
	}

	ref := strings.TrimPrefix(value, prefix)
	secretPath, key, ok := strings.Cut(ref, "#")
	if !ok || secretPath == "" || key == "" {
		return "", fmt.Errorf("secrets: malformed reference %q (want vault:path#key)", value)
	}

	canonical := secretPath + "#" + key
	c.mu.RLock()
	if v, hit := c.cache[canonical]; hit {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("secrets: get %s: %w", secretPath, err)
	}

	raw, found := sec.Data[key]
	if !found {
		return "", fmt.Errorf("secrets: key %q not found in %q", key, secretPath)
	}
	sval, isStr := raw.(string)
	if !isStr {
		return "", fmt.Errorf("secrets: value at %s is not a string", canonical)
	}

	c.mu.Lock()
	c.cache[canonical] = sval
	c.mu.Unlock()
	return sval, nil
}

// splitMount separates "secret/data/stocklot" into mount "secret" and the
// relative path.  The literal "data/" segment is what KVv2 adds itself, so
// it is stripped when present.
func splitMount(p string) (mount, rel string) {
	parts := strings.SplitN(p, "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	rel = strings.TrimPrefix(parts[1], "data/")
	return parts[0], rel
}
