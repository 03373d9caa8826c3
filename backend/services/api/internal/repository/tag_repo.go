package repository

import (
	"context"
	"time"
)

// TagRepository writes authorization tags into SteVe's authorization_cache.
type TagRepository struct {
	db *DB
}

// NewTagRepository returns repository instance.
func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// Upsert inserts the tag or refreshes its info and timestamp.
func (r *TagRepository) Upsert(ctx context.Context, idTag, info string, at time.Time) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	_, err := r.db.conn.ExecContext(ctx, r.db.rebind(upsertTagQuery(r.db.dialect)), idTag, info, true, at.UTC())
	return err
}

func upsertTagQuery(d Dialect) string {
	return `
		INSERT INTO authorization_cache (id_tag, id_tag_info, parent_id_tag, in_authorization_list, last_updated)
		VALUES (?, ?, NULL, ?, ?)
		` + d.upsert([]string{"id_tag"}, "id_tag_info", "in_authorization_list", "last_updated")
}
