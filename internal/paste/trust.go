package paste

// StaticTrust is a trust oracle with a fixed answer, for tests and for
// deployments that need to force the gate one way. Production wiring
// uses SystemTrust.
type StaticTrust bool

var _ TrustOracle = StaticTrust(false)

// IsTrusted returns the fixed answer; the prompt flag is ignored.
func (t StaticTrust) IsTrusted(_ bool) bool { return bool(t) }
