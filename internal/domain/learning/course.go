package learning

import "time"

// Collection names are shared with existing client data.
const (
	CoursesCollection     = "Courses"
	EnrollmentsCollection = "Enrollments"
	UsersCollection       = "users"
)

// Course is a generated course document. Chapters are identified by position.
type Course struct {
	DocID       string      `json:"docId"`
	CourseTitle string      `json:"courseTitle"`
	Description string      `json:"description"`
	BannerImage string      `json:"banner_image"`
	Category    string      `json:"category"`
	Chapters    []Chapter   `json:"chapters"`
	Quiz        []QuizItem  `json:"quiz"`
	Flashcards  []Flashcard `json:"flashcards"`
	QA          []QA        `json:"qa"`
	CreatedBy   string      `json:"createdBy"`
	CreatedOn   time.Time   `json:"createdOn"`

	// Set on copies made through "add to my courses".
	Enrolled bool `json:"enrolled,omitempty"`

	QuizResult map[string]QuizResultEntry `json:"quizResult,omitempty"`
}

type Chapter struct {
	ChapterName string           `json:"chapterName"`
	Content     []ChapterContent `json:"content"`
}

type ChapterContent struct {
	Topic   string  `json:"topic"`
	Explain string  `json:"explain"`
	Code    *string `json:"code"`
	Example *string `json:"example"`
}

type QuizItem struct {
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	CorrectAns string   `json:"correctAns"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuizResultEntry is one answered question, keyed by question index in Course.QuizResult.
type QuizResultEntry struct {
	UserChoice string `json:"userChoice"`
	IsCorrect  bool   `json:"isCorrect"`
	Question   string `json:"question"`
	CorrectAns string `json:"correctAns"`
}

// ChapterCount is the number of chapters, the denominator for every progress figure.
func (c *Course) ChapterCount() int {
	if c == nil {
		return 0
	}
	return len(c.Chapters)
}
