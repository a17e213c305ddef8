package notify

import (
	"github.com/docwatch/docwatch-backend/internal/domain"
)

// Classification is the classifier's verdict on one event.
type Classification struct {
	Relevant    bool
	Significant bool
}

// Classify decides whether an event participates in change tracking and
// whether it counts as significant.
//
// Relevance: only draft-type documents are tracked, and comment-only
// events never are. Significance: a state_changed event entering one of
// the configured significant states. A new revision is always relevant
// but never by itself significant.
func (s *Service) Classify(doc *domain.Document, ev *domain.DocumentEvent) Classification {
	if doc.Type != domain.DocTypeDraft {
		return Classification{}
	}
	if ev.Kind == domain.EventKindComment {
		return Classification{}
	}

	c := Classification{Relevant: true}
	if ev.Kind == domain.EventKindStateChanged {
		_, c.Significant = s.significantStates[ev.State]
	}
	return c
}
