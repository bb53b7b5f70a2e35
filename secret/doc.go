// Package secret resolves credentials referenced from target configuration.
//
// Provider configs routinely carry API keys. Rather than storing them
// verbatim, a config value can reference the environment or a secret backend:
//   - ${OPENAI_API_KEY}                          strict env expansion
//   - secretref:vault:kv/models/openai/api_key   provider lookup
//   - Bearer secretref:vault:kv/.../api_key      inline provider lookup
//
// The router resolves Target.Config through a Resolver at registration time,
// so resolved secrets live only in process memory.
package secret
