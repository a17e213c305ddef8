package list

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/docwatch/docwatch-backend/internal/domain"
)

// ExportCSV writes the list's aggregated contents as CSV, one row per
// document, with a column per enabled display field in the list's
// configured order.
func (s *Service) ExportCSV(ctx context.Context, listID uuid.UUID, w io.Writer) error {
	contents, err := s.Get(ctx, listID)
	if err != nil {
		return err
	}

	fields := contents.List.DisplayFields
	if len(fields) == 0 {
		fields = []domain.DisplayField{domain.DisplayFieldName, domain.DisplayFieldTitle, domain.DisplayFieldState}
	}

	lookups, err := s.exportLookups(ctx, fields, contents.Documents)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)

	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = string(f)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(fields))
	for _, doc := range contents.Documents {
		for i, f := range fields {
			row[i] = lookups.fieldValue(doc, f)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// exportFieldLookups carries the batch-loaded relations the display
// fields need.
type exportFieldLookups struct {
	authors map[uuid.UUID][]string
	groups  map[uuid.UUID]*domain.Group
	persons map[uuid.UUID]string
}

func (s *Service) exportLookups(ctx context.Context, fields []domain.DisplayField, docs []*domain.Document) (*exportFieldLookups, error) {
	lookups := &exportFieldLookups{
		authors: map[uuid.UUID][]string{},
		groups:  map[uuid.UUID]*domain.Group{},
		persons: map[uuid.UUID]string{},
	}

	docIDs := make([]uuid.UUID, len(docs))
	for i, d := range docs {
		docIDs[i] = d.ID
	}

	for _, f := range fields {
		switch f {
		case domain.DisplayFieldAuthors:
			authors, err := s.documents.AuthorNamesByDocIDs(ctx, docIDs)
			if err != nil {
				return nil, fmt.Errorf("load authors: %w", err)
			}
			lookups.authors = authors

		case domain.DisplayFieldGroup:
			var groupIDs []uuid.UUID
			for _, d := range docs {
				if d.GroupID != nil {
					groupIDs = append(groupIDs, *d.GroupID)
				}
			}
			groups, err := s.documents.GroupsByIDs(ctx, groupIDs)
			if err != nil {
				return nil, fmt.Errorf("load groups: %w", err)
			}
			lookups.groups = groups

		case domain.DisplayFieldShepherd, domain.DisplayFieldAD:
			var personIDs []uuid.UUID
			for _, d := range docs {
				if d.ShepherdID != nil {
					personIDs = append(personIDs, *d.ShepherdID)
				}
				if d.ADID != nil {
					personIDs = append(personIDs, *d.ADID)
				}
			}
			persons, err := s.documents.PersonsByIDs(ctx, personIDs)
			if err != nil {
				return nil, fmt.Errorf("load persons: %w", err)
			}
			for _, p := range persons {
				lookups.persons[p.ID] = p.Name
			}
		}
	}
	return lookups, nil
}

func (l *exportFieldLookups) fieldValue(doc *domain.Document, f domain.DisplayField) string {
	switch f {
	case domain.DisplayFieldName:
		return doc.Name
	case domain.DisplayFieldTitle:
		return doc.Title
	case domain.DisplayFieldState:
		return doc.State
	case domain.DisplayFieldRev:
		return doc.Rev
	case domain.DisplayFieldGroup:
		if doc.GroupID != nil {
			if g, ok := l.groups[*doc.GroupID]; ok {
				return g.Acronym
			}
		}
		return ""
	case domain.DisplayFieldAuthors:
		return strings.Join(l.authors[doc.ID], ", ")
	case domain.DisplayFieldShepherd:
		if doc.ShepherdID != nil {
			return l.persons[*doc.ShepherdID]
		}
		return ""
	case domain.DisplayFieldAD:
		if doc.ADID != nil {
			return l.persons[*doc.ADID]
		}
		return ""
	}
	return ""
}
