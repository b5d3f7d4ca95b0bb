// Package item implements the lost and found item lifecycle: creation,
// retrieval, owner-or-admin edits and deletion, listings and photos.
package item

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
)

// Store is the persistence the manager needs.
type Store interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
	CreateItem(ctx context.Context, item *model.Item) (*model.Item, error)
	GetItem(ctx context.Context, kind model.Kind, id int64) (*model.Item, error)
	UpdateItem(ctx context.Context, item *model.Item) error
	DeleteItem(ctx context.Context, kind model.Kind, id int64) error
	ListItems(ctx context.Context, kind model.Kind) ([]model.Item, error)
	CountItems(ctx context.Context, kind model.Kind) (int64, error)
	SetItemImage(ctx context.Context, id int64, image []byte, mime string) error
	GetItemImage(ctx context.Context, id int64) ([]byte, string, error)
}

// Actor is the authenticated caller. *auth.Claims satisfies it.
type Actor interface {
	UserID() int64
	IsAdmin() bool
}

// authenticated reports whether actor names a user. Ids start at 1, so a nil
// *auth.Claims wrapped in a non-nil Actor is anonymous too.
func authenticated(actor Actor) bool {
	return actor != nil && actor.UserID() > 0
}

// Draft holds the fields of a new item. Only the date and storage fields
// of the item's own kind are read.
type Draft struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Location        string     `json:"location"`
	ImageURL        *string    `json:"image_url"`
	LostDate        *time.Time `json:"lost_date"`
	FoundDate       *time.Time `json:"found_date"`
	StorageLocation string     `json:"storage_location"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Category        *string    `json:"category"`
	Location        *string    `json:"location"`
	ImageURL        *string    `json:"image_url"`
	Status          *string    `json:"status"`
	LostDate        *time.Time `json:"lost_date"`
	FoundDate       *time.Time `json:"found_date"`
	StorageLocation *string    `json:"storage_location"`
}

// Manager runs the item lifecycle for both kinds.
type Manager struct {
	store    Store
	maxImage int64
	now      func() time.Time
}

// NewManager returns a manager. maxImage caps uploaded photo size in bytes.
func NewManager(s Store, maxImage int64) *Manager {
	return &Manager{store: s, maxImage: maxImage, now: time.Now}
}

// Create stores a new pending item owned by the caller.
func (m *Manager) Create(ctx context.Context, kind model.Kind, d Draft, actor Actor) (*model.Item, error) {
	adapter, err := adapterFor(kind)
	if err != nil {
		return nil, err
	}
	if !authenticated(actor) {
		return nil, model.Unauthorizedf("not authenticated")
	}

	owner, err := m.store.GetUser(ctx, actor.UserID())
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, model.NotFoundf("user not found")
	}

	for _, f := range []struct{ name, value string }{
		{"title", d.Title},
		{"description", d.Description},
		{"category", d.Category},
		{"location", d.Location},
	} {
		if err := requireText(f.name, f.value); err != nil {
			return nil, err
		}
	}

	now := m.now().UTC()
	it := &model.Item{
		Kind:        adapter.kind,
		UserID:      owner.ID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Location:    d.Location,
		ImageURL:    d.ImageURL,
		Status:      model.ItemStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := adapter.build(&d, it); err != nil {
		return nil, err
	}

	created, err := m.store.CreateItem(ctx, it)
	if err != nil {
		return nil, err
	}

	slog.Info("item created", "kind", kind, "id", created.ID, "user", owner.Email)
	return created, nil
}

// Get returns an item. It needs no authentication.
func (m *Manager) Get(ctx context.Context, kind model.Kind, id int64) (*model.Item, error) {
	if _, err := adapterFor(kind); err != nil {
		return nil, err
	}
	it, err := m.store.GetItem(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, model.NotFoundf("%s item not found", kind)
	}
	return it, nil
}

// editable loads an item and checks the caller may change it.
func (m *Manager) editable(ctx context.Context, kind model.Kind, id int64, actor Actor) (*model.Item, error) {
	it, err := m.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if !authenticated(actor) {
		return nil, model.Unauthorizedf("not authenticated")
	}
	if !it.OwnedBy(actor.UserID()) && !actor.IsAdmin() {
		return nil, model.Forbiddenf("you are not allowed to modify this item")
	}
	return it, nil
}

// Update merges the present fields of p into the item. The status field is
// applied only for admins and ignored for everyone else.
func (m *Manager) Update(ctx context.Context, kind model.Kind, id int64, p Patch, actor Actor) (*model.Item, error) {
	it, err := m.editable(ctx, kind, id, actor)
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		dst   *string
		v     *string
		field string
	}{
		{&it.Title, p.Title, "title"},
		{&it.Description, p.Description, "description"},
		{&it.Category, p.Category, "category"},
		{&it.Location, p.Location, "location"},
	} {
		if err := mergeText(f.dst, f.v, f.field); err != nil {
			return nil, err
		}
	}
	if p.ImageURL != nil {
		it.ImageURL = p.ImageURL
	}
	if p.Status != nil && actor.IsAdmin() {
		if !model.ValidItemStatus(*p.Status) {
			return nil, model.InvalidArgumentf("status must be one of %v", model.ItemStatuses)
		}
		it.Status = *p.Status
	}
	if err := adapters[it.Kind].merge(&p, it); err != nil {
		return nil, err
	}

	it.UpdatedAt = m.now().UTC()
	if err := m.store.UpdateItem(ctx, it); err != nil {
		return nil, err
	}

	slog.Info("item updated", "kind", kind, "id", id, "by", actor.UserID())
	return m.Get(ctx, kind, id)
}

// Delete removes an item. Same authorization as Update.
func (m *Manager) Delete(ctx context.Context, kind model.Kind, id int64, actor Actor) error {
	if _, err := m.editable(ctx, kind, id, actor); err != nil {
		return err
	}
	if err := m.store.DeleteItem(ctx, kind, id); err != nil {
		return err
	}

	slog.Info("item deleted", "kind", kind, "id", id, "by", actor.UserID())
	return nil
}

// List returns every item of a kind, regardless of status.
func (m *Manager) List(ctx context.Context, kind model.Kind) ([]model.Item, error) {
	if _, err := adapterFor(kind); err != nil {
		return nil, err
	}
	items, err := m.store.ListItems(ctx, kind)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Stats counts items per kind.
func (m *Manager) Stats(ctx context.Context) (*model.ItemStats, error) {
	lost, err := m.store.CountItems(ctx, model.KindLost)
	if err != nil {
		return nil, err
	}
	found, err := m.store.CountItems(ctx, model.KindFound)
	if err != nil {
		return nil, err
	}
	return &model.ItemStats{Total: lost + found, TotalLost: lost, TotalFound: found}, nil
}

// ImageURL is where an item's uploaded photo is served.
func ImageURL(kind model.Kind, id int64) string {
	return fmt.Sprintf("/api/v1/%s-items/%d/image", kind, id)
}

// SetImage processes and stores a photo for the item and points its
// image_url at it. Same authorization as Update.
func (m *Manager) SetImage(ctx context.Context, kind model.Kind, id int64, r io.Reader, actor Actor) (*model.Item, error) {
	it, err := m.editable(ctx, kind, id, actor)
	if err != nil {
		return nil, err
	}

	data, err := imaging.Process(r, m.maxImage)
	if errors.Is(err, imaging.ErrUnsupportedFormat) || errors.Is(err, imaging.ErrTooLarge) {
		return nil, model.InvalidArgumentf("%v", err)
	}
	if err != nil {
		return nil, err
	}

	if err := m.store.SetItemImage(ctx, it.ID, data, imaging.OutputMIME); err != nil {
		return nil, err
	}

	url := ImageURL(kind, id)
	it.ImageURL = &url
	it.UpdatedAt = m.now().UTC()
	if err := m.store.UpdateItem(ctx, it); err != nil {
		return nil, err
	}

	slog.Info("item image uploaded", "kind", kind, "id", id, "bytes", len(data))
	return it, nil
}

// Image returns an item's stored photo and its MIME type.
func (m *Manager) Image(ctx context.Context, kind model.Kind, id int64) ([]byte, string, error) {
	if _, err := m.Get(ctx, kind, id); err != nil {
		return nil, "", err
	}
	data, mime, err := m.store.GetItemImage(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if data == nil {
		return nil, "", model.NotFoundf("no image")
	}
	return data, mime, nil
}
