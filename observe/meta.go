package observe

// RouteMeta carries per-request routing context for telemetry.
type RouteMeta struct {
	RequestID string // caller-supplied request id
	Target    string // resolved target name
	Provider  string // provider kind of the target (may be empty)
	Fallback  bool   // true when the target was reached via failover
}

// SpanName returns the deterministic span name for a routed request.
// Format: model.route.<target>
func (m RouteMeta) SpanName() string {
	return "model.route." + m.Target
}
