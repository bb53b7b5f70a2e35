package router

// Target is a named backend descriptor. The router copies the Config map at
// registration, so a Target is immutable once registered.
type Target struct {
	// Name identifies the target in requests and fallback lists.
	Name string

	// Provider is the provider kind, e.g. "openai" or "anthropic". Used for
	// telemetry only; the router never interprets it.
	Provider string

	// Config holds provider-specific settings. Values may reference the
	// environment (${VAR}) or a secret backend (secretref:...) when the
	// router was built with WithSecretResolver.
	Config map[string]string
}

// clone returns a deep copy so callers cannot mutate registered state.
func (t Target) clone() Target {
	out := t
	if t.Config != nil {
		out.Config = make(map[string]string, len(t.Config))
		for k, v := range t.Config {
			out.Config[k] = v
		}
	}
	return out
}
