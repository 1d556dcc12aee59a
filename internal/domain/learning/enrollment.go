package learning

import "time"

// Enrollment is one user's participation in one course. Its document id is EnrollmentID(userID, courseID).
type Enrollment struct {
	UserID            string    `json:"userId"`
	CourseID          string    `json:"courseId"`
	CourseTitle       string    `json:"courseTitle"`
	CourseOwner       string    `json:"courseOwner"`
	EnrolledAt        time.Time `json:"enrolledAt"`
	CompletedChapters []int     `json:"completedChapters"`
	Progress          float64   `json:"progress"`
	TotalChapters     int       `json:"totalChapters"`
	LastAccessed      time.Time `json:"lastAccessed"`
}

// EnrollmentSnapshot is the read view returned by progress lookups.
type EnrollmentSnapshot struct {
	CourseID          string    `json:"courseId"`
	CompletedChapters []int     `json:"completedChapters"`
	Progress          float64   `json:"progress"`
	TotalChapters     int       `json:"totalChapters"`
	EnrolledAt        time.Time `json:"enrolledAt"`
	LastAccessed      time.Time `json:"lastAccessed"`
}

// EnrollmentID is the deterministic key for a (user, course) pair. Ids containing "_" are not
// validated and can collide.
func EnrollmentID(userID, courseID string) string {
	return userID + "_" + courseID
}

// CompletedCount is the size of the completed-chapter set.
func (e *Enrollment) CompletedCount() int {
	if e == nil {
		return 0
	}
	seen := make(map[int]struct{}, len(e.CompletedChapters))
	for _, idx := range e.CompletedChapters {
		seen[idx] = struct{}{}
	}
	return len(seen)
}

func (e *Enrollment) Snapshot() EnrollmentSnapshot {
	completed := make([]int, len(e.CompletedChapters))
	copy(completed, e.CompletedChapters)
	return EnrollmentSnapshot{
		CourseID:          e.CourseID,
		CompletedChapters: completed,
		Progress:          e.Progress,
		TotalChapters:     e.TotalChapters,
		EnrolledAt:        e.EnrolledAt,
		LastAccessed:      e.LastAccessed,
	}
}

// StoredProgress is the percentage written on chapter completion. It is derived from the index
// just completed, not the size of the completed set, so it can disagree with Classify.
func StoredProgress(chapterIndex, totalChapters int) float64 {
	if totalChapters <= 0 {
		return 0
	}
	return float64(chapterIndex+1) / float64(totalChapters) * 100
}
