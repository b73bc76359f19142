// Package admin decides which state the admin area is in for one browser
// session: whether configuration and schema are present, whether someone is
// signed in, and whether that user is, or may become, the site admin.
package admin

// State is the admin gate state.
type State string

const (
	StateEnvMissing        State = "ENV_MISSING"
	StateChecking          State = "CHECKING"
	StateSchemaMissing     State = "SCHEMA_MISSING"
	StateUnauthenticated   State = "UNAUTHENTICATED"
	StateResolving         State = "RESOLVING"
	StateAwaitingBootstrap State = "AWAITING_BOOTSTRAP"
	StateTokenRequired     State = "BOOTSTRAP_TOKEN_REQUIRED"
	StateClaimAvailable    State = "CLAIM_AVAILABLE"
	StateNotAuthorized     State = "NOT_AUTHORIZED"
	StateAuthorized        State = "AUTHORIZED"
)

// Transient reports whether the state is expected to change without user action.
func (s State) Transient() bool {
	return s == StateChecking || s == StateResolving
}

// Unclaimed reports whether the state offers a way to become admin.
func (s State) Unclaimed() bool {
	switch s {
	case StateAwaitingBootstrap, StateTokenRequired, StateClaimAvailable:
		return true
	}
	return false
}

// Snapshot is everything the gate knows at one moment. Nil pointers are
// unknown values.
type Snapshot struct {
	EnvReady        bool
	Checking        bool
	SchemaReady     bool
	SignedIn        bool
	Resolving       bool
	Bootstrapped    bool
	TokenConfigured *bool
	IsAdmin         *bool
}

// Resolve maps a snapshot to a state. Earlier checks win: configuration,
// diagnostics in flight, schema, session, a pending identity check, the
// bootstrap state and finally the admin match.
func Resolve(s Snapshot) State {
	switch {
	case !s.EnvReady:
		return StateEnvMissing
	case s.Checking:
		return StateChecking
	case !s.SchemaReady:
		return StateSchemaMissing
	case !s.SignedIn:
		return StateUnauthenticated
	case s.Resolving:
		return StateResolving
	}

	if !s.Bootstrapped {
		switch {
		case s.TokenConfigured == nil:
			return StateAwaitingBootstrap
		case *s.TokenConfigured:
			return StateTokenRequired
		default:
			return StateClaimAvailable
		}
	}

	if s.IsAdmin != nil && *s.IsAdmin {
		return StateAuthorized
	}
	return StateNotAuthorized
}
