package model

import (
	"strings"
	"time"
)

// Kind selects which of the two item variants a record is.
type Kind string

// Item kinds.
const (
	KindLost  Kind = "lost"
	KindFound Kind = "found"
)

// Kinds lists every item kind in display order.
var Kinds = []Kind{KindLost, KindFound}

// ParseKind accepts "lost" or "found" in any letter case.
func ParseKind(s string) (Kind, error) {
	switch {
	case strings.EqualFold(s, string(KindLost)):
		return KindLost, nil
	case strings.EqualFold(s, string(KindFound)):
		return KindFound, nil
	}
	return "", InvalidArgumentf("type must be 'lost' or 'found'")
}

// Item statuses. Every item starts out pending; active and rejected are set by
// moderation, claimed is produced outside this service but kept as-is.
const (
	ItemStatusPending  = "pending"
	ItemStatusActive   = "active"
	ItemStatusClaimed  = "claimed"
	ItemStatusRejected = "rejected"
)

// ItemStatuses lists every status an item may carry.
var ItemStatuses = []string{ItemStatusPending, ItemStatusActive, ItemStatusClaimed, ItemStatusRejected}

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s string) bool {
	for _, st := range ItemStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Item is a lost or found report. The fields shared by both kinds live on Item
// itself; exactly one of LostDetails or FoundDetails is set, matching Kind.
type Item struct {
	ID          int64     `json:"id"`
	Kind        Kind      `json:"type"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	ImageURL    *string   `json:"image_url"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	*LostDetails
	*FoundDetails
}

// LostDetails holds the fields only lost items have.
type LostDetails struct {
	LostDate time.Time `json:"lost_date"`
}

// FoundDetails holds the fields only found items have.
type FoundDetails struct {
	FoundDate       time.Time `json:"found_date"`
	StorageLocation string    `json:"storage_location"`
}

// EventDate returns the lost date or found date, depending on the kind.
func (i *Item) EventDate() time.Time {
	switch {
	case i.LostDetails != nil:
		return i.LostDate
	case i.FoundDetails != nil:
		return i.FoundDate
	}
	return time.Time{}
}

// OwnedBy reports whether the item belongs to the given user.
func (i *Item) OwnedBy(userID int64) bool {
	return i.UserID == userID
}
