package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedPerson inserts a person with one email address and returns its ID.
func SeedPerson(t *testing.T, pool *pgxpool.Pool, name, email string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO persons (id, name) VALUES ($1, $2)`, id, name)
	if err != nil {
		t.Fatalf("seed person: %v", err)
	}
	if email != "" {
		_, err = pool.Exec(context.Background(),
			`INSERT INTO person_emails (email, person_id) VALUES ($1, $2)`, email, id)
		if err != nil {
			t.Fatalf("seed person email: %v", err)
		}
	}
	return id
}

// SeedGroup inserts a group and returns its ID. parentID may be uuid.Nil.
func SeedGroup(t *testing.T, pool *pgxpool.Pool, acronym, name string, parentID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	var parent *uuid.UUID
	if parentID != uuid.Nil {
		parent = &parentID
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO groups (id, acronym, name, parent_id) VALUES ($1, $2, $3, $4)`,
		id, acronym, name, parent)
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}
	return id
}

// SeedDocumentParams controls optional fields of a seeded document.
type SeedDocumentParams struct {
	Title    string
	Abstract string
	DocType  string
	State    string
	GroupID  uuid.UUID
	Rev      string
	RevTime  time.Time
}

// SeedDocument inserts a document with the given canonical name and returns its ID.
func SeedDocument(t *testing.T, pool *pgxpool.Pool, name string, p SeedDocumentParams) uuid.UUID {
	t.Helper()

	if p.DocType == "" {
		p.DocType = "draft"
	}
	if p.State == "" {
		p.State = "active"
	}
	if p.Rev == "" {
		p.Rev = "00"
	}
	if p.RevTime.IsZero() {
		p.RevTime = time.Now()
	}
	var group *uuid.UUID
	if p.GroupID != uuid.Nil {
		group = &p.GroupID
	}

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO documents (id, name, title, abstract, doc_type, state, group_id, rev, rev_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, name, p.Title, p.Abstract, p.DocType, p.State, group, p.Rev, p.RevTime)
	if err != nil {
		t.Fatalf("seed document: %v", err)
	}
	return id
}

// SeedAuthor links a person to a document under the given role.
func SeedAuthor(t *testing.T, pool *pgxpool.Pool, docID, personID uuid.UUID, role string) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO document_authors (document_id, person_id, role) VALUES ($1, $2, $3)`,
		docID, personID, role)
	if err != nil {
		t.Fatalf("seed author: %v", err)
	}
}

// SeedList inserts a person-owned community list and returns its ID.
func SeedList(t *testing.T, pool *pgxpool.Pool, personID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO community_lists (id, person_id) VALUES ($1, $2)`, id, personID)
	if err != nil {
		t.Fatalf("seed list: %v", err)
	}
	return id
}
