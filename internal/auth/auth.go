// Package auth abstracts the pluggable session stack a job runs under.
//
// The executor opens a session for the submitter before spawning the shell
// and closes it afterwards. Hosts without an authentication stack use the
// no-op opener; a build that wires a real stack must behave identically in
// every other respect.
package auth

// Session is an open account session for one job run.
type Session interface {
	// Close deletes credentials and ends the session.
	Close() error
}

// Opener starts a session for a login: account validity check, session
// open, and credential establishment. Any failure aborts the job with that
// step's error.
type Opener interface {
	Open(login string) (Session, error)
}

// Noop satisfies Opener on hosts without a session stack.
type Noop struct{}

// Open returns a session with no behavior.
func (Noop) Open(login string) (Session, error) { return noopSession{}, nil }

type noopSession struct{}

func (noopSession) Close() error { return nil }
