package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/errs"
)

const (
	defaultListLimit = 25
	maxListLimit     = 100
)

// CreateDocument inserts a document.
func (s *Store) CreateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*backend.Document, error) {
	if documentID == "" {
		return nil, errors.New("validation: empty document id")
	}
	if data == nil {
		data = map[string]any{}
	}
	const q = `
INSERT INTO documents (database_id, collection_id, id, data)
VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at`
	d := &backend.Document{ID: documentID, DatabaseID: databaseID, CollectionID: collectionID, Data: data}
	if err := s.db.Pool.QueryRow(ctx, q, databaseID, collectionID, documentID, data).Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, errs.ErrAlreadyExists
		}
		return nil, err
	}
	return d, nil
}

// GetDocument selects a document by id.
func (s *Store) GetDocument(ctx context.Context, databaseID, collectionID, documentID string) (*backend.Document, error) {
	const q = `
SELECT data, created_at, updated_at
FROM documents WHERE database_id=$1 AND collection_id=$2 AND id=$3`
	d := &backend.Document{ID: documentID, DatabaseID: databaseID, CollectionID: collectionID}
	if err := s.db.Pool.QueryRow(ctx, q, databaseID, collectionID, documentID).Scan(&d.Data, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// column maps an attribute to a SQL expression. attr must pass backend.ValidAttribute.
func column(attr string) string {
	switch attr {
	case backend.AttrID:
		return "id"
	case backend.AttrCreatedAt:
		return "created_at"
	case backend.AttrUpdatedAt:
		return "updated_at"
	}
	return "data->>'" + attr + "'"
}

// listSQL translates queries into a SELECT over one collection.
func listSQL(databaseID, collectionID string, queries []backend.Query) (string, []any, error) {
	var (
		where = []string{"database_id=$1", "collection_id=$2"}
		order []string
		args  = []any{databaseID, collectionID}
		limit = defaultListLimit
	)
	for _, q := range queries {
		if q.Method != backend.MethodLimit && !backend.ValidAttribute(q.Attribute) {
			return "", nil, fmt.Errorf("validation: bad attribute %q", q.Attribute)
		}
		switch q.Method {
		case backend.MethodEqual:
			vals := make([]string, 0, len(q.Values))
			for _, v := range q.Values {
				vals = append(vals, fmt.Sprint(v))
			}
			args = append(args, vals)
			where = append(where, column(q.Attribute)+" = ANY($"+strconv.Itoa(len(args))+")")
		case backend.MethodOrderDesc:
			order = append(order, column(q.Attribute)+" DESC")
		case backend.MethodOrderAsc:
			order = append(order, column(q.Attribute)+" ASC")
		case backend.MethodLimit:
			limit = backend.LimitOf([]backend.Query{q}, defaultListLimit)
		default:
			return "", nil, fmt.Errorf("validation: unsupported query %q", q.Method)
		}
	}
	if limit <= 0 || limit > maxListLimit {
		return "", nil, fmt.Errorf("validation: limit %d out of range", limit)
	}
	if len(order) == 0 {
		order = append(order, "created_at ASC")
	}
	order = append(order, "id ASC")
	args = append(args, limit)

	sql := "SELECT id, data, created_at, updated_at, count(*) OVER () FROM documents WHERE " +
		strings.Join(where, " AND ") +
		" ORDER BY " + strings.Join(order, ", ") +
		" LIMIT $" + strconv.Itoa(len(args))
	return sql, args, nil
}

// ListDocuments returns documents matching queries. Total counts all matches.
func (s *Store) ListDocuments(ctx context.Context, databaseID, collectionID string, queries ...backend.Query) (*backend.DocumentList, error) {
	q, args, err := listSQL(databaseID, collectionID, queries)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &backend.DocumentList{Documents: []backend.Document{}}
	for rows.Next() {
		var (
			d     = backend.Document{DatabaseID: databaseID, CollectionID: collectionID}
			total int64
		)
		if err := rows.Scan(&d.ID, &d.Data, &d.CreatedAt, &d.UpdatedAt, &total); err != nil {
			return nil, err
		}
		out.Total = int(total)
		out.Documents = append(out.Documents, d)
	}
	return out, rows.Err()
}

// UpdateDocument merges data into the stored attributes.
func (s *Store) UpdateDocument(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (*backend.Document, error) {
	const q = `
UPDATE documents SET data = data || $4::jsonb, updated_at = $5
WHERE database_id=$1 AND collection_id=$2 AND id=$3
RETURNING data, created_at, updated_at`
	d := &backend.Document{ID: documentID, DatabaseID: databaseID, CollectionID: collectionID}
	err := s.db.Pool.QueryRow(ctx, q, databaseID, collectionID, documentID, data, s.now().UTC().Truncate(time.Microsecond)).
		Scan(&d.Data, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// DeleteDocument removes a document.
func (s *Store) DeleteDocument(ctx context.Context, databaseID, collectionID, documentID string) error {
	const q = `DELETE FROM documents WHERE database_id=$1 AND collection_id=$2 AND id=$3`
	tag, err := s.db.Pool.Exec(ctx, q, databaseID, collectionID, documentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
