package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// DocNS is the namespace of the non-standard document extensions carried
// on feed entries. Standard Atom consumers ignore them.
const DocNS = "urn:docwatch:atom:doc"

// AtomFeed is an Atom 1.0 feed document.
type AtomFeed struct {
	XMLName xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	DocNS   string      `xml:"xmlns:doc,attr"`
	ID      string      `xml:"id"`
	Title   string      `xml:"title"`
	Updated atomTime    `xml:"updated"`
	Links   []AtomLink  `xml:"link"`
	Entries []AtomEntry `xml:"entry"`
}

// AtomLink is an Atom link element.
type AtomLink struct {
	Rel  string `xml:"rel,attr,omitempty"`
	Href string `xml:"href,attr"`
}

// AtomEntry is one feed entry: one tracked document event. The doc:*
// elements are additive extensions carrying document metadata.
type AtomEntry struct {
	ID       string      `xml:"id"`
	Title    string      `xml:"title"`
	Updated  atomTime    `xml:"updated"`
	Summary  string      `xml:"summary,omitempty"`
	Authors  []AtomName  `xml:"author"`
	Link     *AtomLink   `xml:"link,omitempty"`
	DocName  string      `xml:"doc:name"`
	DocType  string      `xml:"doc:type,omitempty"`
	Stream   string      `xml:"doc:stream,omitempty"`
	Group    string      `xml:"doc:group,omitempty"`
	Shepherd string      `xml:"doc:shepherd,omitempty"`
	AD       string      `xml:"doc:ad,omitempty"`
	Abstract string      `xml:"doc:abstract,omitempty"`
	Rev      string      `xml:"doc:rev,omitempty"`
	States   []string    `xml:"doc:state,omitempty"`
}

// AtomName is an Atom person construct.
type AtomName struct {
	Name string `xml:"name"`
}

type atomTime struct {
	time.Time
}

func (t atomTime) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return e.EncodeElement(t.UTC().Format(time.RFC3339), start)
}

// Encode serializes the feed with the XML declaration prepended.
func (f *AtomFeed) Encode() ([]byte, error) {
	body, err := xml.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode atom feed: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func (s *Service) buildAtom(l *domain.CommunityList, events []*domain.DocumentEvent, docsByID map[uuid.UUID]*domain.Document, lookups *entryLookups) *AtomFeed {
	feed := &AtomFeed{
		DocNS:   DocNS,
		ID:      fmt.Sprintf("%s/lists/%s", s.cfg.BaseURL, l.ID),
		Title:   "Tracked document changes",
		Updated: atomTime{time.Now()},
		Links: []AtomLink{
			{Rel: "self", Href: fmt.Sprintf("%s/lists/%s/feed", s.cfg.BaseURL, l.ID)},
		},
		Entries: []AtomEntry{},
	}
	if len(events) > 0 {
		feed.Updated = atomTime{events[0].CreatedAt}
	}

	for _, ev := range events {
		doc := docsByID[ev.DocumentID]
		if doc == nil {
			// Cache drift: the event's document left the aggregate
			// between the two reads. Skip rather than render a hole.
			continue
		}

		entry := AtomEntry{
			ID:      fmt.Sprintf("%s/events/%s", s.cfg.BaseURL, ev.ID),
			Title:   entryTitle(doc, ev),
			Updated: atomTime{ev.CreatedAt},
			Summary: ev.Description,
			DocName: doc.Name,
			DocType: string(doc.Type),
			Stream:  doc.Stream,
		}

		for _, name := range lookups.authors[doc.ID] {
			entry.Authors = append(entry.Authors, AtomName{Name: name})
		}
		if len(entry.Authors) == 0 && ev.Actor != "" {
			entry.Authors = append(entry.Authors, AtomName{Name: ev.Actor})
		}

		if doc.GroupID != nil {
			if g, ok := lookups.groups[*doc.GroupID]; ok {
				entry.Group = g.Acronym
			}
		}
		if doc.ShepherdID != nil {
			entry.Shepherd = lookups.persons[*doc.ShepherdID]
		}
		if doc.ADID != nil {
			entry.AD = lookups.persons[*doc.ADID]
		}

		// Abstract and revision ride along only on new-revision entries.
		if ev.Kind == domain.EventKindNewRevision {
			entry.Abstract = doc.Abstract
			entry.Rev = doc.Rev
		}
		if doc.State != "" {
			entry.States = append(entry.States, doc.State)
		}
		if ev.Kind == domain.EventKindStateChanged && ev.State != doc.State {
			entry.States = append(entry.States, ev.State)
		}

		feed.Entries = append(feed.Entries, entry)
	}
	return feed
}

func entryTitle(doc *domain.Document, ev *domain.DocumentEvent) string {
	switch ev.Kind {
	case domain.EventKindNewRevision:
		return fmt.Sprintf("%s: new revision %s", doc.Name, doc.Rev)
	case domain.EventKindStateChanged:
		return fmt.Sprintf("%s: %s", doc.Name, ev.State)
	default:
		return doc.Name
	}
}
