// Package privs implements the daemon's privilege discipline: drop to the
// service identity at startup while keeping the saved root ids, then elevate
// only inside short, serialized critical sections.
package privs

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Manager scopes elevation to real privileges around the few operations that
// need them: opening a submitter's job file, changing output-file ownership,
// and opening an authentication session.
//
// Elevations are serialized by a mutex because effective ids are
// process-wide; Do never leaves the process elevated on any exit path.
type Manager struct {
	mu         sync.Mutex
	serviceUID int
	serviceGID int
	elevatable bool
}

// Drop switches the effective identity to the service uid/gid while keeping
// root as the real and saved ids so Do can elevate later. When the process
// is not running as root the manager is a pass-through: Do runs its function
// under the current identity.
func Drop(serviceUID, serviceGID int) (*Manager, error) {
	m := &Manager{serviceUID: serviceUID, serviceGID: serviceGID}
	if os.Geteuid() != 0 {
		return m, nil
	}

	if err := unix.Setresgid(0, serviceGID, 0); err != nil {
		return nil, fmt.Errorf("drop to service gid %d: %w", serviceGID, err)
	}
	if err := unix.Setresuid(0, serviceUID, 0); err != nil {
		return nil, fmt.Errorf("drop to service uid %d: %w", serviceUID, err)
	}
	m.elevatable = true
	return m, nil
}

// NewPassthrough returns a manager that never elevates, for processes that
// already run with the only identity they will ever need.
func NewPassthrough() *Manager {
	return &Manager{}
}

// Elevatable reports whether Do actually raises privileges.
func (m *Manager) Elevatable() bool {
	return m.elevatable
}

// Do runs fn with effective root identity and drops back to the service
// identity before returning, including on panic.
func (m *Manager) Do(fn func() error) error {
	if !m.elevatable {
		return fn()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := unix.Setresuid(-1, 0, -1); err != nil {
		return fmt.Errorf("elevate uid: %w", err)
	}
	if err := unix.Setresgid(-1, 0, -1); err != nil {
		_ = unix.Setresuid(-1, m.serviceUID, -1)
		return fmt.Errorf("elevate gid: %w", err)
	}
	defer func() {
		// The drop must succeed; a process stuck elevated is worse than dead.
		if err := unix.Setresgid(-1, m.serviceGID, -1); err != nil {
			panic(fmt.Sprintf("privs: drop gid: %v", err))
		}
		if err := unix.Setresuid(-1, m.serviceUID, -1); err != nil {
			panic(fmt.Sprintf("privs: drop uid: %v", err))
		}
	}()

	return fn()
}
