package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestCommunityList_Validate(t *testing.T) {
	t.Parallel()

	personID := uuid.New()
	groupID := uuid.New()

	tests := []struct {
		name    string
		list    CommunityList
		wantErr bool
	}{
		{"person owned", CommunityList{PersonID: &personID}, false},
		{"group owned", CommunityList{GroupID: &groupID}, false},
		{"no owner", CommunityList{}, true},
		{"both owners", CommunityList{PersonID: &personID, GroupID: &groupID}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.list.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("expected a validation error, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
