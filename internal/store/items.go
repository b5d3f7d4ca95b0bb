package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

const itemColumns = `id, kind, user_id, title, description, category, location, image_url, status,
	lost_date, found_date, storage_location, created_at, updated_at`

// dateColumn returns the column holding the kind's event date.
func dateColumn(kind model.Kind) string {
	if kind == model.KindFound {
		return "found_date"
	}
	return "lost_date"
}

// CreateItem inserts a new item and returns it as stored.
func (s *Store) CreateItem(ctx context.Context, item *model.Item) (*model.Item, error) {
	lostDate, foundDate, storage := kindColumns(item)
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO items (kind, user_id, title, description, category, location, image_url, status,
		                    lost_date, found_date, storage_location, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Kind, item.UserID, item.Title, item.Description, item.Category, item.Location,
		nullString(item.ImageURL), item.Status, lostDate, foundDate, storage,
		item.CreatedAt.UTC(), item.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return s.GetItem(ctx, item.Kind, id)
}

// GetItem returns an item of the given kind by ID.
func (s *Store) GetItem(ctx context.Context, kind model.Kind, id int64) (*model.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND kind = ?`, id, kind,
	)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// UpdateItem writes every mutable column of item. The owner, kind and
// created_at are never changed.
func (s *Store) UpdateItem(ctx context.Context, item *model.Item) error {
	lostDate, foundDate, storage := kindColumns(item)
	_, err := s.db.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, category = ?, location = ?, image_url = ?,
		                  status = ?, lost_date = ?, found_date = ?, storage_location = ?, updated_at = ?
		 WHERE id = ? AND kind = ?`,
		item.Title, item.Description, item.Category, item.Location, nullString(item.ImageURL),
		item.Status, lostDate, foundDate, storage, item.UpdatedAt.UTC(),
		item.ID, item.Kind,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem removes an item and its image.
func (s *Store) DeleteItem(ctx context.Context, kind model.Kind, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND kind = ?`, id, kind,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// ListItems returns every item of the given kind.
func (s *Store) ListItems(ctx context.Context, kind model.Kind) ([]model.Item, error) {
	return s.queryItems(ctx, "listing items",
		`SELECT `+itemColumns+` FROM items WHERE kind = ? ORDER BY id`, kind,
	)
}

// FindItemsByStatus returns items of the given kind with the given status.
func (s *Store) FindItemsByStatus(ctx context.Context, kind model.Kind, status string) ([]model.Item, error) {
	return s.queryItems(ctx, "finding items by status",
		`SELECT `+itemColumns+` FROM items WHERE kind = ? AND status = ? ORDER BY id`, kind, status,
	)
}

// FindItemsByLocation returns items whose location contains substr, ignoring
// case. Matching uses the Unicode-aware fold function registered by package db.
func (s *Store) FindItemsByLocation(ctx context.Context, kind model.Kind, substr string) ([]model.Item, error) {
	return s.queryItems(ctx, "finding items by location",
		`SELECT `+itemColumns+` FROM items
		 WHERE kind = ? AND instr(fold(location), fold(?)) > 0 ORDER BY id`, kind, substr,
	)
}

// FindItemsByKeyword returns items whose title or description contains
// keyword, ignoring case.
func (s *Store) FindItemsByKeyword(ctx context.Context, kind model.Kind, keyword string) ([]model.Item, error) {
	return s.queryItems(ctx, "finding items by keyword",
		`SELECT `+itemColumns+` FROM items
		 WHERE kind = ? AND (instr(fold(title), fold(?)) > 0 OR instr(fold(description), fold(?)) > 0)
		 ORDER BY id`, kind, keyword, keyword,
	)
}

// FindItemsByDateRange returns items whose lost or found date lies within
// [from, to], both ends inclusive.
func (s *Store) FindItemsByDateRange(ctx context.Context, kind model.Kind, from, to time.Time) ([]model.Item, error) {
	col := dateColumn(kind)
	return s.queryItems(ctx, "finding items by date",
		`SELECT `+itemColumns+` FROM items
		 WHERE kind = ? AND `+col+` >= ? AND `+col+` <= ? ORDER BY id`, kind, from.UTC(), to.UTC(),
	)
}

// CountItems returns the number of items of the given kind.
func (s *Store) CountItems(ctx context.Context, kind model.Kind) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE kind = ?`, kind,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// CountItemsByStatus returns the number of items of the given kind and status.
func (s *Store) CountItemsByStatus(ctx context.Context, kind model.Kind, status string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE kind = ? AND status = ?`, kind, status,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting items by status: %w", err)
	}
	return n, nil
}

// SetItemImage stores an item's image, replacing any previous one.
func (s *Store) SetItemImage(ctx context.Context, id int64, image []byte, mime string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO item_images (item_id, image, mime) VALUES (?, ?, ?)
		 ON CONFLICT (item_id) DO UPDATE SET image = excluded.image, mime = excluded.mime`,
		id, image, mime,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's image data and MIME type. Data is nil when
// the item has no image.
func (s *Store) GetItemImage(ctx context.Context, id int64) ([]byte, string, error) {
	var image []byte
	var mime string
	err := s.db.QueryRowContext(ctx,
		`SELECT image, mime FROM item_images WHERE item_id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime, nil
}

func (s *Store) queryItems(ctx context.Context, op, query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// scanItems reads all rows and closes them.
func scanItems(rows *sql.Rows) ([]model.Item, error) {
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var imageURL, storage sql.NullString
		var lostDate, foundDate sql.NullTime
		if err := rows.Scan(&item.ID, &item.Kind, &item.UserID, &item.Title, &item.Description,
			&item.Category, &item.Location, &imageURL, &item.Status,
			&lostDate, &foundDate, &storage, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		if imageURL.Valid {
			item.ImageURL = &imageURL.String
		}
		switch item.Kind {
		case model.KindLost:
			item.LostDetails = &model.LostDetails{LostDate: lostDate.Time}
		case model.KindFound:
			item.FoundDetails = &model.FoundDetails{FoundDate: foundDate.Time, StorageLocation: storage.String}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// kindColumns returns the values for the kind-specific columns. Columns that
// do not apply to the item's kind are NULL.
func kindColumns(item *model.Item) (lostDate, foundDate, storage any) {
	if item.LostDetails != nil {
		lostDate = item.LostDate.UTC()
	}
	if item.FoundDetails != nil {
		foundDate = item.FoundDate.UTC()
		storage = item.StorageLocation
	}
	return lostDate, foundDate, storage
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
