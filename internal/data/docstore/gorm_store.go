package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/learnhub-backend/internal/pkg/logger"
	"github.com/yungbote/learnhub-backend/internal/realtime"
)

// DocumentRow is the storage row behind every document.
type DocumentRow struct {
	ID         uint           `gorm:"primaryKey;autoIncrement"`
	Collection string         `gorm:"column:collection;size:128;not null;uniqueIndex:idx_documents_collection_doc_id,priority:1"`
	DocID      string         `gorm:"column:doc_id;size:512;not null;uniqueIndex:idx_documents_collection_doc_id,priority:2"`
	Data       datatypes.JSON `gorm:"column:data;not null"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`
}

func (DocumentRow) TableName() string { return "documents" }

type gormStore struct {
	db   *gorm.DB
	log  *logger.Logger
	feed *Feed
}

// NewGormStore builds a Store on db. feed may be nil, in which case OnChange is unavailable.
func NewGormStore(db *gorm.DB, baseLog *logger.Logger, feed *Feed) Store {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &gormStore{db: db, log: baseLog.With("repo", "DocumentStore"), feed: feed}
}

func (s *gormStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var row DocumentRow
	res := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Limit(1).
		Find(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return rowToDocument(&row)
}

func (s *gormStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if strings.TrimSpace(collection) == "" || strings.TrimSpace(id) == "" {
		return fmt.Errorf("set: collection and id are required")
	}
	merged, err := merge(nil, data)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}

	now := time.Now().UTC()
	row := &DocumentRow{
		Collection: collection,
		DocID:      id,
		Data:       datatypes.JSON(raw),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	s.publish(ctx, collection, id, merged, now)
	return nil
}

func (s *gormStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	var merged map[string]any
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DocumentRow
		res := tx.Where("collection = ? AND doc_id = ?", collection, id).Limit(1).Find(&row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		doc, err := rowToDocument(&row)
		if err != nil {
			return err
		}
		merged, err = merge(doc.Data, partial)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		return tx.Model(&DocumentRow{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{"data": datatypes.JSON(raw), "updated_at": now}).Error
	})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	s.publish(ctx, collection, id, merged, now)
	return nil
}

func (s *gormStore) Query(ctx context.Context, collection string, filters []Filter, order *OrderBy) ([]*Document, error) {
	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	// String equality is pushed into SQL; every filter is re-checked after decoding.
	for _, f := range filters {
		if v, ok := f.Value.(string); ok {
			q = q.Where(datatypes.JSONQuery("data").Equals(v, strings.Split(f.Field, ".")...))
		}
	}
	var rows []DocumentRow
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}

	out := make([]*Document, 0, len(rows))
	for i := range rows {
		doc, err := rowToDocument(&rows[i])
		if err != nil {
			s.log.Warn("Skipping undecodable document", "collection", collection, "docId", rows[i].DocID, "error", err)
			continue
		}
		if matches(doc.Data, filters) {
			out = append(out, doc)
		}
	}
	if order != nil && order.Field != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a, _ := lookup(out[i].Data, order.Field)
			b, _ := lookup(out[j].Data, order.Field)
			if order.Descending {
				return compareValues(a, b) > 0
			}
			return compareValues(a, b) < 0
		})
	}
	return out, nil
}

func (s *gormStore) OnChange(ctx context.Context, collection string, filters []Filter, fn func(*Document)) (func(), error) {
	if s.feed == nil {
		return nil, ErrNoFeed
	}
	if fn == nil {
		return nil, fmt.Errorf("onChange: callback required")
	}
	sub := s.feed.subscribe(collection, filters)
	stop := func() { s.feed.unsubscribe(sub) }

	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.Outbound:
				if !ok {
					return
				}
				fn(&Document{Collection: ev.Collection, ID: ev.DocID, Data: ev.Data, UpdatedAt: ev.At})
			}
		}
	}()
	return stop, nil
}

// publish runs after the write has committed, so a failure is logged and not returned.
func (s *gormStore) publish(ctx context.Context, collection, id string, data map[string]any, at time.Time) {
	if s.feed == nil {
		return
	}
	ev := realtime.ChangeEvent{Collection: collection, DocID: id, Data: data, At: at}
	if err := s.feed.Publish(ctx, ev); err != nil {
		s.log.Warn("Change event publish failed", "collection", collection, "docId", id, "error", err)
	}
}

func rowToDocument(row *DocumentRow) (*Document, error) {
	data := map[string]any{}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &data); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", row.Collection, row.DocID, err)
		}
	}
	return &Document{
		Collection: row.Collection,
		ID:         row.DocID,
		Data:       data,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
