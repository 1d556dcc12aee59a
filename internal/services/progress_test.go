package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/learnhub-backend/internal/data/docstore"
	"github.com/yungbote/learnhub-backend/internal/data/docstore/testutil"
	"github.com/yungbote/learnhub-backend/internal/domain/learning"
)

func putEnrollment(t *testing.T, store docstore.Store, docID, userID, courseID string, completed ...int) {
	t.Helper()
	e := learning.Enrollment{
		UserID:            userID,
		CourseID:          courseID,
		CompletedChapters: append([]int{}, completed...),
		EnrolledAt:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		LastAccessed:      time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := docstore.SetValue(context.Background(), store, learning.EnrollmentsCollection, docID, &e); err != nil {
		t.Fatalf("put enrollment %s: %v", docID, err)
	}
}

func newProgressService(t *testing.T, store docstore.Store) ProgressService {
	t.Helper()
	log := testutil.Logger(t)
	return NewProgressService(log, store, NewEnrollmentService(log, store), 2)
}

func TestComputeUserStatsClassification(t *testing.T) {
	cases := []struct {
		name      string
		chapters  int
		completed []int
		want      learning.UserStats
	}{
		{name: "all_three_done", chapters: 3, completed: []int{0, 1, 2}, want: learning.UserStats{Total: 1, Completed: 1}},
		{name: "one_of_three", chapters: 3, completed: []int{0}, want: learning.UserStats{Total: 1, InProgress: 1}},
		{name: "none_done", chapters: 3, want: learning.UserStats{Total: 1, InProgress: 1}},
		{name: "empty_course", chapters: 0, want: learning.UserStats{Total: 1, InProgress: 1}},
		{name: "duplicate_index", chapters: 2, completed: []int{0, 0}, want: learning.UserStats{Total: 1, InProgress: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t)
			putCourse(t, store, "c1", "o", tc.chapters)
			putEnrollment(t, store, "u1_c1", "u1", "c1", tc.completed...)

			got, err := newProgressService(t, store).ComputeUserStats(context.Background(), "u1")
			if err != nil {
				t.Fatalf("ComputeUserStats: %v", err)
			}
			if got != tc.want {
				t.Fatalf("stats=%+v want %+v", got, tc.want)
			}
		})
	}
}

func TestComputeUserStatsCountsDistinctCourses(t *testing.T) {
	store := newTestStore(t)
	putCourse(t, store, "c1", "o", 2)
	putEnrollment(t, store, "u1_c1", "u1", "c1", 0)
	putEnrollment(t, store, "stale-duplicate", "u1", "c1", 0)

	got, err := newProgressService(t, store).ComputeUserStats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ComputeUserStats: %v", err)
	}
	if got.Total != 1 {
		t.Fatalf("total=%d want 1", got.Total)
	}
}

func TestComputeUserStatsIsolatesBadEnrollments(t *testing.T) {
	base := newTestStore(t)
	putCourse(t, base, "c1", "o", 2)
	putCourse(t, base, "c2", "o", 1)
	putCourse(t, base, "c4", "o", 1)
	putEnrollment(t, base, "u1_c1", "u1", "c1", 0, 1)
	putEnrollment(t, base, "u1_c2", "u1", "c2")
	putEnrollment(t, base, "u1_c3", "u1", "c3", 0)
	putEnrollment(t, base, "u1_c4", "u1", "c4")
	putEnrollment(t, base, "u1_blank", "u1", "")
	putEnrollment(t, base, "u2_c1", "u2", "c1", 0, 1)
	store := &faultyStore{Store: base, failGet: map[string]bool{"c4": true}}

	got, err := newProgressService(t, store).ComputeUserStats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ComputeUserStats: %v", err)
	}
	want := learning.UserStats{Total: 2, InProgress: 1, Completed: 1}
	if got != want {
		t.Fatalf("stats=%+v want %+v", got, want)
	}
}

func TestComputeUserStatsNoEnrollments(t *testing.T) {
	got, err := newProgressService(t, newTestStore(t)).ComputeUserStats(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ComputeUserStats: %v", err)
	}
	if got != (learning.UserStats{}) {
		t.Fatalf("stats=%+v want zero", got)
	}
}

func TestComputeUserStatsListFailure(t *testing.T) {
	store := &faultyStore{Store: newTestStore(t), failAll: true}
	if _, err := newProgressService(t, store).ComputeUserStats(context.Background(), "u1"); err == nil {
		t.Fatalf("expected error when enrollments cannot be listed")
	}
}

func TestListEnrolledCourses(t *testing.T) {
	store := newTestStore(t)
	putCourse(t, store, "c1", "o", 4)
	putCourse(t, store, "c2", "o", 0)
	putEnrollment(t, store, "u1_c1", "u1", "c1", 0, 1)
	putEnrollment(t, store, "u1_c2", "u1", "c2")
	putEnrollment(t, store, "u1_gone", "u1", "gone")

	got, err := newProgressService(t, store).ListEnrolledCourses(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListEnrolledCourses: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows=%d want 2", len(got))
	}
	byID := map[string]EnrolledCourse{}
	for _, row := range got {
		byID[row.Course.DocID] = row
	}
	if r := byID["c1"]; r.Percent != 50 || r.Status != learning.StatusInProgress || len(r.Enrollment.CompletedChapters) != 2 {
		t.Fatalf("c1 row=%+v", r)
	}
	if r := byID["c2"]; r.Percent != 0 || r.Status != learning.StatusNotStarted {
		t.Fatalf("c2 row=%+v", r)
	}
}

func TestWatchUserStatsFollowsEnrollmentChanges(t *testing.T) {
	store := newTestStore(t)
	course := putCourse(t, store, "c1", "o", 1)
	log := testutil.Logger(t)
	enrollments := NewEnrollmentService(log, store)
	svc := NewProgressService(log, store, enrollments, 2)

	var (
		mu  sync.Mutex
		got []learning.UserStats
	)
	updates := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.WatchUserStats(ctx, "u1", func(s learning.UserStats) {
			mu.Lock()
			got = append(got, s)
			mu.Unlock()
			updates <- struct{}{}
		})
	}()

	wait := func(label string) {
		t.Helper()
		select {
		case <-updates:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", label)
		}
	}
	wait("initial stats")
	// Give the subscription a moment to register before writing.
	time.Sleep(50 * time.Millisecond)

	if !enrollments.Enroll(ctx, "u1", "c1", course) {
		t.Fatalf("enroll failed")
	}
	wait("enroll update")
	if !enrollments.CompleteChapter(ctx, "u1", "c1", 0, 1) {
		t.Fatalf("complete failed")
	}
	wait("complete update")

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("WatchUserStats: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != (learning.UserStats{}) {
		t.Fatalf("initial=%+v", got[0])
	}
	last := got[len(got)-1]
	if last != (learning.UserStats{Total: 1, Completed: 1}) {
		t.Fatalf("last=%+v", last)
	}
}
