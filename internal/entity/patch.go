package entity

import "github.com/google/uuid"

// Optional carries an explicit presence flag so that "not supplied" and
// "set to the zero value" stay distinguishable in partial updates.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// SessionPatch is a sparse clinical update. ProblemType set to nil clears it.
type SessionPatch struct {
	Severity    Optional[Severity]
	ProblemType Optional[*string]
	IsReported  Optional[bool]
}

func (p SessionPatch) IsEmpty() bool {
	return !p.Severity.Set && !p.ProblemType.Set && !p.IsReported.Set
}

// TagUpdate replaces the full issue tag set of a session. The remaining
// fields are optional and left untouched when unset.
type TagUpdate struct {
	IssueTags   []string
	Status      Optional[SessionStatus]
	Priority    Optional[Priority]
	CounselorId Optional[string]
}

// ClinicalTag is a counselor's classification of a session. Every field is
// required.
type ClinicalTag struct {
	SessionId   uuid.UUID
	IssueTags   []string
	CounselorId string
	Priority    Priority
}
