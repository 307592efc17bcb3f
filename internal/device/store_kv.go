//go:build js && wasm

package device

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dvcrn/ledspeed/internal/speed"
	"github.com/syumai/workers/cloudflare/kv"
)

const (
	kvNamespace = "ledspeed_kv"
	kvKey       = "speed_settings"
)

// KVStore keeps settings in a Cloudflare Workers KV namespace. The binding
// name is configured in wrangler.toml.
type KVStore struct {
	ns *kv.Namespace
}

func NewKVStore() (*KVStore, error) {
	ns, err := kv.NewNamespace(kvNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize KV namespace: %w", err)
	}
	return &KVStore{ns: ns}, nil
}

func (k *KVStore) Load(context.Context) (speed.Settings, bool, error) {
	raw, err := k.ns.GetString(kvKey, nil)
	if err != nil {
		return speed.Settings{}, false, fmt.Errorf("failed to get settings from KV: %w", err)
	}
	if raw == "" {
		return speed.Settings{}, false, nil
	}

	var s speed.Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return speed.Settings{}, false, fmt.Errorf("failed to parse settings from KV: %w", err)
	}
	return s, true, nil
}

func (k *KVStore) Save(_ context.Context, s speed.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := k.ns.PutString(kvKey, string(data), nil); err != nil {
		return fmt.Errorf("failed to save settings to KV: %w", err)
	}
	return nil
}

// Shared reports true: every Workers isolate reads and writes the namespace.
func (k *KVStore) Shared() bool { return true }

func (k *KVStore) Name() string { return "KVStore(" + kvNamespace + ")" }
