//go:build js && wasm

package credentials

import (
	"fmt"

	"github.com/syumai/workers/cloudflare/kv"
)

// KVBinding is the namespace binding name configured in wrangler.toml
const KVBinding = "OURA_TOKENS"

// CloudflareKV adapts a Workers KV namespace to KeyValue
type CloudflareKV struct {
	ns *kv.Namespace
}

// NewCloudflareKV opens the KV namespace bound under the given name
func NewCloudflareKV(binding string) (*CloudflareKV, error) {
	// In Cloudflare Workers, KV namespaces are accessed via bindings
	ns, err := kv.NewNamespace(binding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize KV namespace: %w", err)
	}
	return &CloudflareKV{ns: ns}, nil
}

func (c *CloudflareKV) GetString(key string) (string, error) {
	v, err := c.ns.GetString(key, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get %s from KV: %w", key, err)
	}
	// Missing keys surface as JS null.
	if v == "<null>" {
		return "", nil
	}
	return v, nil
}

func (c *CloudflareKV) PutString(key, value string) error {
	if err := c.ns.PutString(key, value, nil); err != nil {
		return fmt.Errorf("failed to store %s in KV: %w", key, err)
	}
	return nil
}

func (c *CloudflareKV) Delete(key string) error {
	if err := c.ns.Delete(key); err != nil {
		return fmt.Errorf("failed to delete %s from KV: %w", key, err)
	}
	return nil
}
