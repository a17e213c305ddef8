package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is a corpus document. The corpus is maintained outside this
// service; documents are read-only here.
type Document struct {
	ID         uuid.UUID
	Name       string // canonical name, e.g. "draft-ietf-mars-test"
	Title      string
	Abstract   string
	Type       DocType
	Stream     string
	State      string
	GroupID    *uuid.UUID
	Rev        string
	RevTime    time.Time
	ShepherdID *uuid.UUID
	ADID       *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Person is a corpus person. The person directory is eventually consistent
// with external identity data: an email address may temporarily resolve to
// zero or several persons.
type Person struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Group is a working group; a group with children acts as an area.
type Group struct {
	ID       uuid.UUID
	Acronym  string
	Name     string
	ParentID *uuid.UUID
}

// DocumentEvent is one state/content change of a document, as emitted by
// the corpus. Significant is stamped by the change classifier before the
// event is persisted.
type DocumentEvent struct {
	ID          uuid.UUID
	DocumentID  uuid.UUID
	Kind        EventKind
	Description string
	Actor       string
	State       string // target state for state_changed events
	Significant bool
	CreatedAt   time.Time
}

// NamedDocument is the (id, canonical name) projection used by name index
// rebuild scans.
type NamedDocument struct {
	ID   uuid.UUID
	Name string
}

// ChangeRecord is the per-document rolling summary of change times. It
// backs date-based list sorting and the significant-only feed filter.
type ChangeRecord struct {
	DocumentID        uuid.UUID
	LastChangedAt     time.Time
	LastNewVersionAt  *time.Time
	LastSignificantAt *time.Time
}
