// Package moderation holds the administrator actions: banning users,
// approving or rejecting items and the system report.
package moderation

import (
	"context"
	"log/slog"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// Store is the persistence moderation needs.
type Store interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	UpdateUserBanned(ctx context.Context, id int64, banned bool, at time.Time) error
	GetItem(ctx context.Context, kind model.Kind, id int64) (*model.Item, error)
	UpdateItem(ctx context.Context, item *model.Item) error
	CountUsers(ctx context.Context) (int64, error)
	CountUsersByBanned(ctx context.Context, banned bool) (int64, error)
	CountItems(ctx context.Context, kind model.Kind) (int64, error)
	CountItemsByStatus(ctx context.Context, kind model.Kind, status string) (int64, error)
}

// Statuses an administrator may move an item to.
var moderatedStatuses = []string{model.ItemStatusActive, model.ItemStatusRejected}

// Service performs moderation. Callers must have checked that the actor is
// an administrator.
type Service struct {
	store Store
	now   func() time.Time
}

// New returns a moderation service.
func New(s Store) *Service {
	return &Service{store: s, now: time.Now}
}

// SetUserBanStatus bans or unbans a user and returns the updated user.
func (s *Service) SetUserBanStatus(ctx context.Context, userID int64, banned bool) (*model.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NotFoundf("user not found with id: %d", userID)
	}

	if err := s.store.UpdateUserBanned(ctx, userID, banned, s.now().UTC()); err != nil {
		return nil, err
	}

	slog.Info("user ban status changed", "user", user.Email, "banned", banned)
	return s.store.GetUser(ctx, userID)
}

// SetItemStatus approves (active) or rejects an item of the given kind.
func (s *Service) SetItemStatus(ctx context.Context, itemID int64, status, kind string) error {
	if status != model.ItemStatusActive && status != model.ItemStatusRejected {
		return model.InvalidArgumentf("status must be one of %v", moderatedStatuses)
	}
	k := model.Kind(kind)
	if k != model.KindLost && k != model.KindFound {
		return model.InvalidArgumentf("type must be 'lost' or 'found'")
	}

	it, err := s.store.GetItem(ctx, k, itemID)
	if err != nil {
		return err
	}
	if it == nil {
		return model.NotFoundf("%s item not found with id: %d", k, itemID)
	}

	it.Status = status
	it.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateItem(ctx, it); err != nil {
		return err
	}

	slog.Info("item status changed", "kind", k, "id", itemID, "status", status)
	return nil
}

// SystemReport counts users and items.
func (s *Service) SystemReport(ctx context.Context) (*model.Report, error) {
	var r model.Report
	var err error

	if r.TotalUsers, err = s.store.CountUsers(ctx); err != nil {
		return nil, err
	}
	if r.ActiveUsers, err = s.store.CountUsersByBanned(ctx, false); err != nil {
		return nil, err
	}
	if r.BannedUsers, err = s.store.CountUsersByBanned(ctx, true); err != nil {
		return nil, err
	}
	if r.Lost, err = s.itemCounts(ctx, model.KindLost); err != nil {
		return nil, err
	}
	if r.Found, err = s.itemCounts(ctx, model.KindFound); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) itemCounts(ctx context.Context, kind model.Kind) (model.ItemCounts, error) {
	var c model.ItemCounts
	var err error

	if c.Total, err = s.store.CountItems(ctx, kind); err != nil {
		return c, err
	}
	for _, f := range []struct {
		status string
		dst    *int64
	}{
		{model.ItemStatusClaimed, &c.Claimed},
		{model.ItemStatusActive, &c.Active},
		{model.ItemStatusPending, &c.Pending},
		{model.ItemStatusRejected, &c.Rejected},
	} {
		if *f.dst, err = s.store.CountItemsByStatus(ctx, kind, f.status); err != nil {
			return c, err
		}
	}
	return c, nil
}
