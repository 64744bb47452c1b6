package session

// Phase is the Session Guard's position in its state machine.
// Initializing is left exactly once; afterwards the guard moves between
// Unauthenticated and Authenticated for the lifetime of the process.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseUnauthenticated
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Identity is the subject of a session token
type Identity struct {
	UserID string   `json:"id"`
	Name   string   `json:"name,omitempty"`
	Email  string   `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// State is a snapshot of the process-wide session view
type State struct {
	Identity      *Identity // nil when not authenticated
	Authenticated bool
	Initializing  bool
	LastError     error // last login or startup failure, nil when cleared
}

// Phase derives the state machine position from the snapshot
func (s State) Phase() Phase {
	switch {
	case s.Initializing:
		return PhaseInitializing
	case s.Authenticated:
		return PhaseAuthenticated
	default:
		return PhaseUnauthenticated
	}
}

// ErrorMessage returns the user-displayable text of LastError, or "" when there is none.
func (s State) ErrorMessage() string {
	if s.LastError == nil {
		return ""
	}
	return s.LastError.Error()
}

func (s State) clone() State {
	if s.Identity != nil {
		id := *s.Identity
		id.Roles = append([]string(nil), s.Identity.Roles...)
		s.Identity = &id
	}
	return s
}
