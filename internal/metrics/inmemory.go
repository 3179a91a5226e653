package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered uint64
	LoginSuccesses  uint64
	LoginFailures   uint64
	TokensIssued    uint64
	TokensVerified  uint64
	TokensRejected  uint64
	TokensRevoked   uint64
	TodosCreated    uint64
	TodosUpdated    uint64
	TodosDeleted    uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	usersRegistered uint64
	loginSuccesses  uint64
	loginFailures   uint64
	tokensIssued    uint64
	tokensVerified  uint64
	tokensRejected  uint64
	tokensRevoked   uint64
	todosCreated    uint64
	todosUpdated    uint64
	todosDeleted    uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered: atomic.LoadUint64(&m.usersRegistered),
		LoginSuccesses:  atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:   atomic.LoadUint64(&m.loginFailures),
		TokensIssued:    atomic.LoadUint64(&m.tokensIssued),
		TokensVerified:  atomic.LoadUint64(&m.tokensVerified),
		TokensRejected:  atomic.LoadUint64(&m.tokensRejected),
		TokensRevoked:   atomic.LoadUint64(&m.tokensRevoked),
		TodosCreated:    atomic.LoadUint64(&m.todosCreated),
		TodosUpdated:    atomic.LoadUint64(&m.todosUpdated),
		TodosDeleted:    atomic.LoadUint64(&m.todosDeleted),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncTokenIssued increments the issued token counter.
func (m *InMemoryRecorder) IncTokenIssued() {
	atomic.AddUint64(&m.tokensIssued, 1)
}

// IncTokenVerified increments the verification counter for the given status.
func (m *InMemoryRecorder) IncTokenVerified(status string) {
	if status == "success" {
		atomic.AddUint64(&m.tokensVerified, 1)
		return
	}
	atomic.AddUint64(&m.tokensRejected, 1)
}

// IncTokenRevoked increments the revoked token counter.
func (m *InMemoryRecorder) IncTokenRevoked() {
	atomic.AddUint64(&m.tokensRevoked, 1)
}

// IncTodoCreated increments the todo created counter.
func (m *InMemoryRecorder) IncTodoCreated() {
	atomic.AddUint64(&m.todosCreated, 1)
}

// IncTodoUpdated increments the todo updated counter.
func (m *InMemoryRecorder) IncTodoUpdated() {
	atomic.AddUint64(&m.todosUpdated, 1)
}

// IncTodoDeleted increments the todo deleted counter.
func (m *InMemoryRecorder) IncTodoDeleted() {
	atomic.AddUint64(&m.todosDeleted, 1)
}
