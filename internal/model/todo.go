package model

import "time"

// Todo represents a single task owned by exactly one user.
// CompletedAt is an epoch-millisecond timestamp present if and only if
// Completed is true.
type Todo struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	CompletedAt *int64    `json:"completedAt"`
	CreatorID   string    `json:"creatorId"`
	CreatedAt   time.Time `json:"-"`
}

// MarkCompleted sets the completion flag and stamps CompletedAt with the
// given time in epoch milliseconds.
func (t *Todo) MarkCompleted(at time.Time) {
	ms := at.UnixMilli()
	t.Completed = true
	t.CompletedAt = &ms
}

// ClearCompleted resets the completion flag and drops the timestamp.
// This runs on every update whose patch does not assert completion, so a
// text-only edit also clears a previous completion timestamp.
func (t *Todo) ClearCompleted() {
	t.Completed = false
	t.CompletedAt = nil
}
