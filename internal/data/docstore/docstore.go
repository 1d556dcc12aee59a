// Package docstore is a small document database: JSON documents addressed by (collection, id),
// with full overwrite, shallow merge, equality queries and a change feed.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/yungbote/learnhub-backend/internal/pkg/errors"
)

var (
	// ErrNotFound is returned by Get and Update for a missing document.
	ErrNotFound = apperrors.ErrNotFound
	// ErrNoFeed is returned by OnChange when the store was built without a change feed.
	ErrNoFeed = errors.New("docstore: change feed not configured")
)

type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Set overwrites the whole document, creating it when absent.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update merges top-level fields into an existing document. ArrayUnion values append the
	// elements not already present.
	Update(ctx context.Context, collection, id string, partial map[string]any) error
	Query(ctx context.Context, collection string, filters []Filter, order *OrderBy) ([]*Document, error)
	// OnChange calls fn after every committed write to a matching document until ctx is done or
	// the returned func is called.
	OnChange(ctx context.Context, collection string, filters []Filter, fn func(*Document)) (func(), error)
}

type Document struct {
	Collection string
	ID         string
	Data       map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Decode copies the document data into out through its json tags.
func (d *Document) Decode(out any) error {
	if d == nil {
		return ErrNotFound
	}
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s/%s: %w", d.Collection, d.ID, err)
	}
	return nil
}

// Filter is an equality predicate on a field. Dotted names address nested fields.
type Filter struct {
	Field string
	Value any
}

func Where(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

type OrderBy struct {
	Field      string
	Descending bool
}

func Asc(field string) *OrderBy  { return &OrderBy{Field: field} }
func Desc(field string) *OrderBy { return &OrderBy{Field: field, Descending: true} }

// ArrayUnion appends each element to an array field unless an equal element is already there.
type ArrayUnion []any

func Union(values ...any) ArrayUnion { return ArrayUnion(values) }

// Encode turns a tagged struct into document data.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("encode %T: not an object: %w", v, err)
	}
	if out == nil {
		return nil, fmt.Errorf("encode %T: not an object", v)
	}
	return out, nil
}

// SetValue encodes v and overwrites collection/id with it.
func SetValue(ctx context.Context, s Store, collection, id string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, collection, id, data)
}

// GetInto loads collection/id and decodes it into out.
func GetInto(ctx context.Context, s Store, collection, id string, out any) error {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	return doc.Decode(out)
}
