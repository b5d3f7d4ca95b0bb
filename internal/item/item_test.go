package item

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

type actor struct {
	id    int64
	admin bool
}

func (a actor) UserID() int64 { return a.id }
func (a actor) IsAdmin() bool { return a.admin }

type fixture struct {
	m     *Manager
	s     *store.Store
	owner actor
	other actor
	admin actor
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s := store.New(db.NewTestDB(t))
	ctx := context.Background()

	mk := func(email string, admin bool) actor {
		u, err := s.CreateUser(ctx, &model.User{Email: email, PasswordHash: "x", IsAdmin: admin})
		require.NoError(t, err)
		return actor{id: u.ID, admin: admin}
	}

	return &fixture{
		m:     NewManager(s, 1<<20),
		s:     s,
		owner: mk("owner@example.com", false),
		other: mk("other@example.com", false),
		admin: mk("admin@example.com", true),
	}
}

func ptr[T any](v T) *T { return &v }

var lostOn = time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)

func lostDraft() Draft {
	return Draft{
		Title:       "Blue backpack",
		Description: "North Face, laptop inside",
		Category:    "bags",
		Location:    "Main Library",
		LostDate:    &lostOn,
	}
}

func foundDraft() Draft {
	return Draft{
		Title:           "Umbrella",
		Description:     "Black, folding",
		Category:        "accessories",
		Location:        "Cafe",
		FoundDate:       &lostOn,
		StorageLocation: "Reception",
	}
}

func TestCreateLost(t *testing.T) {
	f := setup(t)
	fixed := time.Date(2025, 4, 3, 8, 0, 0, 0, time.UTC)
	f.m.now = func() time.Time { return fixed }

	it, err := f.m.Create(context.Background(), model.KindLost, lostDraft(), f.owner)
	require.NoError(t, err)

	assert.Equal(t, model.KindLost, it.Kind)
	assert.Equal(t, f.owner.id, it.UserID)
	assert.Equal(t, model.ItemStatusPending, it.Status)
	assert.True(t, fixed.Equal(it.CreatedAt))
	assert.True(t, it.CreatedAt.Equal(it.UpdatedAt))
	require.NotNil(t, it.LostDetails)
	assert.True(t, lostOn.Equal(it.LostDate))
	assert.Nil(t, it.FoundDetails)
}

func TestCreateAlwaysPending(t *testing.T) {
	f := setup(t)

	// Admins get no shortcut either.
	it, err := f.m.Create(context.Background(), model.KindFound, foundDraft(), f.admin)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusPending, it.Status)
	assert.Equal(t, "Reception", it.StorageLocation)
}

func TestCreateMissingOwner(t *testing.T) {
	f := setup(t)

	_, err := f.m.Create(context.Background(), model.KindLost, lostDraft(), actor{id: 999})
	assert.True(t, model.IsKind(err, model.KindNotFound), "got %v", err)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	d := lostDraft()
	d.Title = ""
	_, err := f.m.Create(ctx, model.KindLost, d, f.owner)
	assert.True(t, model.IsKind(err, model.KindInvalidArgument))

	d = lostDraft()
	d.LostDate = nil
	_, err = f.m.Create(ctx, model.KindLost, d, f.owner)
	assert.True(t, model.IsKind(err, model.KindInvalidArgument))

	fd := foundDraft()
	fd.StorageLocation = ""
	_, err = f.m.Create(ctx, model.KindFound, fd, f.owner)
	assert.True(t, model.IsKind(err, model.KindInvalidArgument))

	_, err = f.m.Create(ctx, model.Kind("stolen"), lostDraft(), f.owner)
	assert.True(t, model.IsKind(err, model.KindInvalidArgument))
}

func TestGetNotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.m.Get(ctx, model.KindLost, 12345)
	assert.True(t, model.IsKind(err, model.KindNotFound))

	// A lost item is not reachable as a found item.
	it, err := f.m.Create(ctx, model.KindLost, lostDraft(), f.owner)
	require.NoError(t, err)
	_, err = f.m.Get(ctx, model.KindFound, it.ID)
	assert.True(t, model.IsKind(err, model.KindNotFound))
}

func TestUpdateByOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	it, err := f.m.Create(ctx, model.KindLost, lostDraft(), f.owner)
	require.NoError(t, err)

	later := it.UpdatedAt.Add(time.Hour)
	f.m.now = func() time.Time { return later }

	updated, err := f.m.Update(ctx, model.KindLost, it.ID, Patch{
		Title:  ptr("Red backpack"),
		Status: ptr(model.ItemStatusActive),
	}, f.owner)
	require.NoError(t, err)

	assert.Equal(t, "Red backpack", updated.Title)
	assert.Equal(t, "North Face, laptop inside", updated.Description)
	// Non-admins cannot change status; the rest of the patch still applies.
	assert.Equal(t, model.ItemStatusPending, updated.Status)
	assert.True(t, later.Equal(updated.UpdatedAt))
	assert.True(t, it.CreatedAt.Equal(updated.CreatedAt))
}

func TestUpdateByAdminSetsStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	it, err := f.m.Create(ctx, model.KindFound, foundDraft(), f.owner)
	require.NoError(t, err)

	updated, err := f.m.Update(ctx, model.KindFound, it.ID, Patch{
		Status:          ptr(model.ItemStatusClaimed),
		StorageLocation: ptr("Security office"),
	}, f.admin)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusClaimed, updated.Status)
	assert.Equal(t, "Security office", updated.StorageLocation)

	_, err = f.m.Update(ctx, model.KindFound, it.ID, Patch{Status: ptr("lost-forever")}, f.admin)
	assert.True(t, model.IsKind(err, model.KindInvalidArgument))
}

func TestUpdateForbidden(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	it, err := f.m.Create(ctx, model.KindLost, lostDraft(), f.owner)
	require.NoError(t, err)

	_, err = f.m.Update(ctx, model.KindLost, it.ID, Patch{Title: ptr("Mine now")}, f.other)
	assert.True(t, model.IsKind(err, model.KindForbidden))

	got, err := f.m.Get(ctx, model.KindLost, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue backpack", got.Title)
}

func TestUpdateNotFoundBeforeForbidden(t *testing.T) {
	f := setup(t)

	_, err := f.m.Update(context.Background(), model.KindLost, 777, Patch{}, f.other)
	assert.True(t, model.IsKind(err, model.KindNotFound))
}

func TestUpdateEmptyPatchOnlyRefreshesTimestamp(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	it, err := f.m.Create(ctx, model.KindLost, lostDraft(), f.owner)
	require.NoError(t, err)

	later := it.UpdatedAt.Add(time.Minute)
	f.m.now = func() time.Time { return later }

	updated, err := f.m.Update(ctx, model.KindLost, it.ID, Patch{}, f.owner)
	require.NoError(t, err)
	assert.Equal(t, it.Title, updated.Title)
	assert.Equal(t, it.Location, updated.Location)
	assert.True(t, it.LostDate.Equal(updated.LostDate))
	assert.True(t, later.Equal(updated.UpdatedAt))
}

func TestUpdateRejectsBlankRequiredField(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	it, err := f.m.Create(ctx, model.KindLost, lostDraft(), f.owner)
	require.NoError(t, err)

	_, err = f.m.Update(ctx, model.KindLost, it.ID, Patch{Location: ptr("  ")}, f.owner)
	assert.True(t, model.IsKind(err, model.KindInvalidArgument))
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	a, err := f.m.Create(ctx, model.KindLost, lostDraft(), f.owner)
	require.NoError(t, err)
	b, err := f.m.Create(ctx, model.KindLost, lostDraft(), f.owner)
	require.NoError(t, err)

	err = f.m.Delete(ctx, model.KindLost, a.ID, f.other)
	assert.True(t, model.IsKind(err, model.KindForbidden))

	require.NoError(t, f.m.Delete(ctx, model.KindLost, a.ID, f.owner))
	require.NoError(t, f.m.Delete(ctx, model.KindLost, b.ID, f.admin))

	_, err = f.m.Get(ctx, model.KindLost, a.ID)
	assert.True(t, model.IsKind(err, model.KindNotFound))

	err = f.m.Delete(ctx, model.KindLost, a.ID, f.owner)
	assert.True(t, model.IsKind(err, model.KindNotFound))
}

func TestListAndStats(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	empty, err := f.m.List(ctx, model.KindFound)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = f.m.Create(ctx, model.KindLost, lostDraft(), f.owner)
	require.NoError(t, err)
	_, err = f.m.Create(ctx, model.KindLost, lostDraft(), f.other)
	require.NoError(t, err)
	_, err = f.m.Create(ctx, model.KindFound, foundDraft(), f.owner)
	require.NoError(t, err)

	lost, err := f.m.List(ctx, model.KindLost)
	require.NoError(t, err)
	assert.Len(t, lost, 2)

	stats, err := f.m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.ItemStats{Total: 3, TotalLost: 2, TotalFound: 1}, stats)
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{0, 255, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSetImage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	it, err := f.m.Create(ctx, model.KindFound, foundDraft(), f.owner)
	require.NoError(t, err)

	_, _, err = f.m.Image(ctx, model.KindFound, it.ID)
	assert.True(t, model.IsKind(err, model.KindNotFound))

	_, err = f.m.SetImage(ctx, model.KindFound, it.ID, bytes.NewReader(testPNG(t)), f.other)
	assert.True(t, model.IsKind(err, model.KindForbidden))

	_, err = f.m.SetImage(ctx, model.KindFound, it.ID, bytes.NewReader([]byte("hello")), f.owner)
	assert.True(t, model.IsKind(err, model.KindInvalidArgument))

	updated, err := f.m.SetImage(ctx, model.KindFound, it.ID, bytes.NewReader(testPNG(t)), f.owner)
	require.NoError(t, err)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, ImageURL(model.KindFound, it.ID), *updated.ImageURL)

	data, mime, err := f.m.Image(ctx, model.KindFound, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.NotEmpty(t, data)

	got, err := f.m.Get(ctx, model.KindFound, it.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ImageURL)
	assert.Equal(t, fmt.Sprintf("/api/v1/found-items/%d/image", it.ID), *got.ImageURL)
}

func TestNilClaimsAreUnauthorized(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	var claims *auth.Claims

	_, err := f.m.Create(ctx, model.KindLost, lostDraft(), claims)
	assert.True(t, model.IsKind(err, model.KindUnauthorized), "Create error = %v", err)
	_, err = f.m.Create(ctx, model.KindLost, lostDraft(), nil)
	assert.True(t, model.IsKind(err, model.KindUnauthorized), "Create error = %v", err)

	it, err := f.m.Create(ctx, model.KindLost, lostDraft(), f.owner)
	require.NoError(t, err)

	_, err = f.m.Update(ctx, model.KindLost, it.ID, Patch{Title: ptr("x")}, claims)
	assert.True(t, model.IsKind(err, model.KindUnauthorized), "Update error = %v", err)
	err = f.m.Delete(ctx, model.KindLost, it.ID, claims)
	assert.True(t, model.IsKind(err, model.KindUnauthorized), "Delete error = %v", err)
}

func TestUpdateSamePatchTwiceIsIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		kind  model.Kind
		draft Draft
		patch Patch
	}{
		{
			name:  "lost",
			kind:  model.KindLost,
			draft: lostDraft(),
			patch: Patch{
				Title:       ptr("Green backpack"),
				Description: ptr("Patagonia, two pockets"),
				Location:    ptr("Lecture hall 3"),
				ImageURL:    ptr("https://example.com/backpack.jpg"),
				Status:      ptr(model.ItemStatusActive),
				LostDate:    ptr(lostOn.Add(-24 * time.Hour)),
			},
		},
		{
			name:  "found",
			kind:  model.KindFound,
			draft: foundDraft(),
			patch: Patch{
				Category:        ptr("umbrellas"),
				Status:          ptr(model.ItemStatusRejected),
				FoundDate:       ptr(lostOn.Add(2 * time.Hour)),
				StorageLocation: ptr("Lost property office"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()

			it, err := f.m.Create(ctx, tt.kind, tt.draft, f.owner)
			require.NoError(t, err)

			clock := it.UpdatedAt
			f.m.now = func() time.Time {
				clock = clock.Add(time.Minute)
				return clock
			}

			first, err := f.m.Update(ctx, tt.kind, it.ID, tt.patch, f.admin)
			require.NoError(t, err)
			second, err := f.m.Update(ctx, tt.kind, it.ID, tt.patch, f.admin)
			require.NoError(t, err)

			assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
			assert.Equal(t, withoutUpdatedAt(first), withoutUpdatedAt(second))
		})
	}
}

// withoutUpdatedAt copies it with updated_at cleared and times in UTC so
// items read back separately compare equal.
func withoutUpdatedAt(it *model.Item) model.Item {
	c := *it
	c.UpdatedAt = time.Time{}
	c.CreatedAt = c.CreatedAt.UTC()
	if it.LostDetails != nil {
		c.LostDetails = &model.LostDetails{LostDate: it.LostDate.UTC()}
	}
	if it.FoundDetails != nil {
		c.FoundDetails = &model.FoundDetails{FoundDate: it.FoundDate.UTC(), StorageLocation: it.StorageLocation}
	}
	return c
}
