package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// System attribute names.
const (
	AttrID        = "$id"
	AttrCreatedAt = "$createdAt"
	AttrUpdatedAt = "$updatedAt"
)

// Document is a stored record. Data holds user attributes only.
type Document struct {
	ID           string
	DatabaseID   string
	CollectionID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Data         map[string]any
}

// DocumentList is a page of documents.
type DocumentList struct {
	Total     int
	Documents []Document
}

// UnmarshalJSON splits "$"-prefixed system attributes from user data.
func (d *Document) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = Document{Data: make(map[string]any, len(raw))}
	for k, v := range raw {
		if !strings.HasPrefix(k, "$") {
			d.Data[k] = v
			continue
		}
		s, _ := v.(string)
		switch k {
		case AttrID:
			d.ID = s
		case "$databaseId":
			d.DatabaseID = s
		case "$collectionId":
			d.CollectionID = s
		case AttrCreatedAt, AttrUpdatedAt:
			if s == "" {
				continue
			}
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return fmt.Errorf("document %s: %w", k, err)
			}
			if k == AttrCreatedAt {
				d.CreatedAt = ts
			} else {
				d.UpdatedAt = ts
			}
		}
	}
	return nil
}

// MarshalJSON renders the document in the same shape UnmarshalJSON accepts.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Data)+5)
	for k, v := range d.Data {
		out[k] = v
	}
	out[AttrID] = d.ID
	out["$databaseId"] = d.DatabaseID
	out["$collectionId"] = d.CollectionID
	if !d.CreatedAt.IsZero() {
		out[AttrCreatedAt] = d.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !d.UpdatedAt.IsZero() {
		out[AttrUpdatedAt] = d.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// Decode converts the document into v (a pointer to a struct with json tags).
// System attributes are visible under their "$" names.
func (d *Document) Decode(v any) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
