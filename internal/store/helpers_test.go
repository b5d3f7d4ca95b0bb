package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(db.NewTestDB(t))
}

func createTestUser(t *testing.T, s *Store, email string) *model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &model.User{Email: email, PasswordHash: "hash"})
	require.NoError(t, err)
	return u
}

func lostItem(userID int64, title, location string, lostDate time.Time) *model.Item {
	now := time.Now().UTC()
	return &model.Item{
		Kind:        model.KindLost,
		UserID:      userID,
		Title:       title,
		Description: "description of " + title,
		Category:    "misc",
		Location:    location,
		Status:      model.ItemStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		LostDetails: &model.LostDetails{LostDate: lostDate},
	}
}

func foundItem(userID int64, title, location string, foundDate time.Time) *model.Item {
	now := time.Now().UTC()
	return &model.Item{
		Kind:         model.KindFound,
		UserID:       userID,
		Title:        title,
		Description:  "description of " + title,
		Category:     "misc",
		Location:     location,
		Status:       model.ItemStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		FoundDetails: &model.FoundDetails{FoundDate: foundDate, StorageLocation: "Front desk"},
	}
}
