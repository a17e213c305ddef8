package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommunityList is a tracked-document view owned by exactly one person or
// one group. It combines explicitly pinned documents with rule matches.
// The aggregated document set is materialized in community_list_cache and
// guarded by Dirty.
type CommunityList struct {
	ID            uuid.UUID
	PersonID      *uuid.UUID
	GroupID       *uuid.UUID
	SortMethod    SortMethod
	DisplayFields []DisplayField
	Dirty         bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the one-owner invariant.
func (l *CommunityList) Validate() error {
	if (l.PersonID == nil) == (l.GroupID == nil) {
		return NewValidationError("owner", "exactly one of person or group must own the list")
	}
	return nil
}

// Rule is a declarative predicate that expands to a document set. Which
// parameter fields are meaningful depends on Type. The last evaluation
// result is materialized in rule_docs and guarded by Dirty.
type Rule struct {
	ID              uuid.UUID
	ListID          uuid.UUID
	Type            RuleType
	Text            string     // pattern or substring for text/name_contains
	GroupID         *uuid.UUID // group/area rules
	PersonID        *uuid.UUID // author/ad/shepherd rules
	State           string     // state rules, or an extra filter on any rule
	Dirty           bool
	LastEvaluatedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RuleUpdateParams holds partial updates for a rule's parameters.
// nil means "leave unchanged". The rule type itself is immutable; changing
// strategy means deleting and re-creating the rule.
type RuleUpdateParams struct {
	Text     *string
	GroupID  *uuid.UUID
	PersonID *uuid.UUID
	State    *string
}

// ListUpdateParams holds partial updates for a list's configuration.
type ListUpdateParams struct {
	SortMethod    *SortMethod
	DisplayFields []DisplayField // nil = leave unchanged
}

// Subscription is an email subscription to a list's change notifications.
// Any address may subscribe; subscriptions are independent of ownership.
type Subscription struct {
	ID        uuid.UUID
	ListID    uuid.UUID
	Email     string
	NotifyOn  NotifyFilter
	CreatedAt time.Time
}

// NotificationRecord marks that a notification for (event, list) has been
// claimed. It is the dedupe key that keeps retried dispatches from mailing
// the same subscribers twice.
type NotificationRecord struct {
	EventID     uuid.UUID
	ListID      uuid.UUID
	Significant bool
	CreatedAt   time.Time
}
