package domain

// RuleType identifies the matching strategy of a tracking rule.
// The set is closed: adding a variant means adding a constant here and an
// evaluator in the rules service registry. Serialized tags must stay stable.
type RuleType string

const (
	// RuleTypeGroup matches documents owned by a working group.
	RuleTypeGroup RuleType = "group"
	// RuleTypeArea matches documents owned by any group under a parent area.
	RuleTypeArea RuleType = "area"
	// RuleTypeAuthor matches documents authored by a person.
	RuleTypeAuthor RuleType = "author"
	// RuleTypeAD matches documents for which a person is the responsible AD.
	RuleTypeAD RuleType = "ad"
	// RuleTypeShepherd matches documents shepherded by a person.
	RuleTypeShepherd RuleType = "shepherd"
	// RuleTypeState matches documents currently in a given state.
	RuleTypeState RuleType = "state"
	// RuleTypeText matches a substring against title and abstract.
	RuleTypeText RuleType = "text"
	// RuleTypeNameContains matches a regular expression against the
	// canonical document name, served by the name index.
	RuleTypeNameContains RuleType = "name_contains"
	// RuleTypeRefTo and RuleTypeRefFrom are declared but have no matching
	// semantics yet; they evaluate to the empty set.
	RuleTypeRefTo   RuleType = "ref_to"
	RuleTypeRefFrom RuleType = "ref_from"
)

func (t RuleType) String() string { return string(t) }

func (t RuleType) IsValid() bool {
	switch t {
	case RuleTypeGroup, RuleTypeArea, RuleTypeAuthor, RuleTypeAD, RuleTypeShepherd,
		RuleTypeState, RuleTypeText, RuleTypeNameContains, RuleTypeRefTo, RuleTypeRefFrom:
		return true
	}
	return false
}

// SortMethod selects the ordering of an aggregated list.
type SortMethod string

const (
	SortByName        SortMethod = "name"
	SortByTitle       SortMethod = "title"
	SortByGroup       SortMethod = "group"
	SortByRevDate     SortMethod = "rev_date"
	SortByChanged     SortMethod = "changed"
	SortBySignificant SortMethod = "significant"
)

func (m SortMethod) String() string { return string(m) }

func (m SortMethod) IsValid() bool {
	switch m {
	case SortByName, SortByTitle, SortByGroup, SortByRevDate, SortByChanged, SortBySignificant:
		return true
	}
	return false
}

// DisplayField is a column a list owner has enabled for tabular output.
type DisplayField string

const (
	DisplayFieldName     DisplayField = "name"
	DisplayFieldTitle    DisplayField = "title"
	DisplayFieldState    DisplayField = "state"
	DisplayFieldGroup    DisplayField = "group"
	DisplayFieldRev      DisplayField = "rev"
	DisplayFieldAuthors  DisplayField = "authors"
	DisplayFieldShepherd DisplayField = "shepherd"
	DisplayFieldAD       DisplayField = "ad"
)

func (f DisplayField) String() string { return string(f) }

func (f DisplayField) IsValid() bool {
	switch f {
	case DisplayFieldName, DisplayFieldTitle, DisplayFieldState, DisplayFieldGroup,
		DisplayFieldRev, DisplayFieldAuthors, DisplayFieldShepherd, DisplayFieldAD:
		return true
	}
	return false
}

// NotifyFilter is a subscription's significance filter.
type NotifyFilter string

const (
	// NotifyAll delivers every relevant change.
	NotifyAll NotifyFilter = "all"
	// NotifySignificant delivers only significant state transitions.
	NotifySignificant NotifyFilter = "significant"
)

func (f NotifyFilter) String() string { return string(f) }

func (f NotifyFilter) IsValid() bool {
	return f == NotifyAll || f == NotifySignificant
}

// DocType is the corpus document type. Only drafts participate in
// change tracking.
type DocType string

const (
	DocTypeDraft   DocType = "draft"
	DocTypeCharter DocType = "charter"
	DocTypeMinutes DocType = "minutes"
)

func (t DocType) String() string { return string(t) }

// EventKind is the kind of a document change event.
type EventKind string

const (
	// EventKindNewRevision is a new revision upload.
	EventKindNewRevision EventKind = "new_revision"
	// EventKindStateChanged is a state-machine transition.
	EventKindStateChanged EventKind = "state_changed"
	// EventKindComment is a comment-only event; never tracked.
	EventKindComment EventKind = "comment"
)

func (k EventKind) String() string { return string(k) }

// PersonRole is a document responsibility role.
type PersonRole string

const (
	PersonRoleAuthor   PersonRole = "author"
	PersonRoleAD       PersonRole = "ad"
	PersonRoleShepherd PersonRole = "shepherd"
)

func (r PersonRole) String() string { return string(r) }
