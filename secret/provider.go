package secret

import (
	"context"
	"fmt"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// StaticProvider serves secrets from a fixed map. Intended for tests and
// development setups.
type StaticProvider struct {
	name    string
	secrets map[string]string
}

// NewStaticProvider creates a provider named name over the given secrets.
func NewStaticProvider(name string, secrets map[string]string) *StaticProvider {
	return &StaticProvider{name: name, secrets: secrets}
}

func (p *StaticProvider) Name() string {
	return p.name
}

func (p *StaticProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := p.secrets[ref]
	if !ok {
		return "", fmt.Errorf("secret %q not found", ref)
	}
	return v, nil
}

func (p *StaticProvider) Close() error {
	return nil
}

// Ensure StaticProvider implements Provider
var _ Provider = (*StaticProvider)(nil)
