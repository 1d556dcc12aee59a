package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/learnhub-backend/internal/data/docstore"
	"github.com/yungbote/learnhub-backend/internal/data/docstore/testutil"
	"github.com/yungbote/learnhub-backend/internal/domain/learning"
)

var errStoreDown = errors.New("store down")

// scriptedAI replays canned replies in order and records every prompt it was sent.
type scriptedAI struct {
	mu      sync.Mutex
	replies []string
	err     error
	block   bool
	users   []string
}

func (a *scriptedAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	a.mu.Lock()
	a.users = append(a.users, user)
	a.mu.Unlock()
	if a.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if a.err != nil {
		return "", a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	out := a.replies[0]
	a.replies = a.replies[1:]
	return out, nil
}

// faultyStore wraps a real store and fails chosen operations.
type faultyStore struct {
	docstore.Store

	mu        sync.Mutex
	failGet   map[string]bool
	failSetAt int
	sets      int
	failAll   bool
	setOrder  []string
}

func (f *faultyStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	if f.failAll || f.failGet[id] {
		return nil, errStoreDown
	}
	return f.Store.Get(ctx, collection, id)
}

func (f *faultyStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	f.mu.Lock()
	f.sets++
	n := f.sets
	f.mu.Unlock()
	if f.failAll || n == f.failSetAt {
		return errStoreDown
	}
	f.mu.Lock()
	f.setOrder = append(f.setOrder, id)
	f.mu.Unlock()
	return f.Store.Set(ctx, collection, id, data)
}

func (f *faultyStore) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	if f.failAll {
		return errStoreDown
	}
	return f.Store.Update(ctx, collection, id, partial)
}

func (f *faultyStore) Query(ctx context.Context, collection string, filters []docstore.Filter, order *docstore.OrderBy) ([]*docstore.Document, error) {
	if f.failAll {
		return nil, errStoreDown
	}
	return f.Store.Query(ctx, collection, filters, order)
}

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return t0.Add(time.Duration(n) * time.Minute)
	}
}

func putCourse(t *testing.T, store docstore.Store, id, owner string, chapters int) *learning.Course {
	t.Helper()
	c := &learning.Course{
		DocID:       id,
		CourseTitle: "Course " + id,
		Category:    "Programming",
		CreatedBy:   owner,
		CreatedOn:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for i := 0; i < chapters; i++ {
		c.Chapters = append(c.Chapters, learning.Chapter{ChapterName: "ch"})
	}
	if err := docstore.SetValue(context.Background(), store, learning.CoursesCollection, id, c); err != nil {
		t.Fatalf("put course %s: %v", id, err)
	}
	return c
}

func newTestStore(t *testing.T) docstore.Store {
	t.Helper()
	return testutil.Store(t)
}
