package learning

type CourseStatus string

const (
	StatusNotStarted CourseStatus = "not-started"
	StatusInProgress CourseStatus = "in-progress"
	StatusCompleted  CourseStatus = "completed"
)

// UserStats are the per-user course counters shown on the profile screen.
type UserStats struct {
	Total      int `json:"total"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// Clamp floors every counter at zero.
func (s UserStats) Clamp() UserStats {
	return UserStats{
		Total:      max(s.Total, 0),
		InProgress: max(s.InProgress, 0),
		Completed:  max(s.Completed, 0),
	}
}

// Classify is the aggregation rule: completed only when every chapter of a non-empty course is
// done. A course with zero chapters is in progress.
func Classify(totalChapters, completedCount int) CourseStatus {
	if totalChapters > 0 && completedCount == totalChapters {
		return StatusCompleted
	}
	return StatusInProgress
}

// DisplayStatus is Classify plus not-started for enrollments with nothing completed.
func DisplayStatus(totalChapters, completedCount int) CourseStatus {
	status := Classify(totalChapters, completedCount)
	if status == StatusInProgress && completedCount == 0 {
		return StatusNotStarted
	}
	return status
}

// CardPercent is the progress-card figure, completed over chapters with an empty course
// counted as one chapter.
func CardPercent(totalChapters, completedCount int) float64 {
	return float64(completedCount) / float64(max(totalChapters, 1)) * 100
}
