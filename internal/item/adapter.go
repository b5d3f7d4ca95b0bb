package item

import (
	"strings"

	"github.com/erazemk/najdeno/internal/model"
)

// kindAdapter holds everything that differs between lost and found items.
// The lifecycle operations never look at the kind themselves.
type kindAdapter struct {
	kind model.Kind
	// build validates the kind-specific draft fields and attaches them.
	build func(d *Draft, it *model.Item) error
	// merge applies the kind-specific fields present in p.
	merge func(p *Patch, it *model.Item) error
}

var adapters = map[model.Kind]kindAdapter{
	model.KindLost: {
		kind: model.KindLost,
		build: func(d *Draft, it *model.Item) error {
			if d.LostDate == nil || d.LostDate.IsZero() {
				return model.InvalidArgumentf("lost_date is required")
			}
			it.LostDetails = &model.LostDetails{LostDate: d.LostDate.UTC()}
			return nil
		},
		merge: func(p *Patch, it *model.Item) error {
			if p.LostDate != nil {
				if p.LostDate.IsZero() {
					return model.InvalidArgumentf("lost_date cannot be empty")
				}
				it.LostDate = p.LostDate.UTC()
			}
			return nil
		},
	},
	model.KindFound: {
		kind: model.KindFound,
		build: func(d *Draft, it *model.Item) error {
			if d.FoundDate == nil || d.FoundDate.IsZero() {
				return model.InvalidArgumentf("found_date is required")
			}
			if strings.TrimSpace(d.StorageLocation) == "" {
				return model.InvalidArgumentf("storage_location is required")
			}
			it.FoundDetails = &model.FoundDetails{
				FoundDate:       d.FoundDate.UTC(),
				StorageLocation: d.StorageLocation,
			}
			return nil
		},
		merge: func(p *Patch, it *model.Item) error {
			if p.FoundDate != nil {
				if p.FoundDate.IsZero() {
					return model.InvalidArgumentf("found_date cannot be empty")
				}
				it.FoundDate = p.FoundDate.UTC()
			}
			return mergeText(&it.StorageLocation, p.StorageLocation, "storage_location")
		},
	},
}

func adapterFor(kind model.Kind) (kindAdapter, error) {
	a, ok := adapters[kind]
	if !ok {
		return kindAdapter{}, model.InvalidArgumentf("type must be 'lost' or 'found'")
	}
	return a, nil
}

// mergeText copies a present, non-blank value into dst.
func mergeText(dst *string, v *string, field string) error {
	if v == nil {
		return nil
	}
	if strings.TrimSpace(*v) == "" {
		return model.InvalidArgumentf("%s cannot be empty", field)
	}
	*dst = *v
	return nil
}

func requireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return model.InvalidArgumentf("%s is required", field)
	}
	return nil
}

