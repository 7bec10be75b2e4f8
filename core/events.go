package core

import "time"

// AuthOutcome classifies the result of a request authentication.
type AuthOutcome string

const (
	OutcomeAuthenticated AuthOutcome = "authenticated"
	OutcomeRejected      AuthOutcome = "rejected"
	OutcomeForbidden     AuthOutcome = "forbidden"
)

// AuthEvent is the audit record of one authentication attempt.
type AuthEvent struct {
	ID       string      `json:"id"`
	Identity string      `json:"identity,omitempty"`
	Outcome  AuthOutcome `json:"outcome"`
	Reason   string      `json:"reason,omitempty"`
	Role     string      `json:"role,omitempty"`
	At       time.Time   `json:"at"`
}
