package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	StatusPending       SubmissionStatus = "Pending"
	StatusAccepted      SubmissionStatus = "Accepted"
	StatusWrongAnswer   SubmissionStatus = "WrongAnswer"
	StatusCompilerError SubmissionStatus = "CompilerError"
	StatusError         SubmissionStatus = "Error"
)

// Terminal reports whether the status is final. A submission transitions from
// Pending to exactly one terminal status and is never mutated afterwards.
func (s SubmissionStatus) Terminal() bool {
	return s != StatusPending
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// JSONStrings is a helper type for storing a string slice as JSON text.
type JSONStrings []string

func (s JSONStrings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *JSONStrings) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, s)
}

// JSONText stores an already-marshalled JSON document verbatim.
type JSONText json.RawMessage

func (t JSONText) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "[]", nil
	}
	return string(t), nil
}

func (t *JSONText) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		*t = append((*t)[:0], v...)
	case string:
		*t = JSONText(v)
	default:
		return errors.New("unsupported type for JSONText")
	}
	return nil
}

func (t JSONText) MarshalJSON() ([]byte, error) {
	if len(t) == 0 {
		return []byte("null"), nil
	}
	return t, nil
}

func (t *JSONText) UnmarshalJSON(data []byte) error {
	*t = append((*t)[:0], data...)
	return nil
}

type User struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Username       string      `gorm:"uniqueIndex" json:"username"`
	PasswordHash   string      `json:"-"`
	Nickname       string      `json:"nickname"`
	IsAdmin        bool        `json:"is_admin"`
	SolvedProblems JSONStrings `gorm:"type:text" json:"solved_problems"`
}

type Contest struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`

	Problems []Problem `gorm:"foreignKey:ContestID;constraint:OnDelete:CASCADE" json:"problems,omitempty"`
}

type Problem struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ContestID  string     `gorm:"index" json:"contest_id"`
	Title      string     `json:"title"`
	Statement  string     `json:"statement"`
	Difficulty Difficulty `json:"difficulty"`

	TestCases []TestCase `gorm:"foreignKey:ProblemID;constraint:OnDelete:CASCADE" json:"test_cases,omitempty"`
}

type TestCase struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ProblemID string `gorm:"index" json:"problem_id"`

	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
	Hidden         bool   `json:"hidden"`
}

type ContestParticipant struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID    string `gorm:"uniqueIndex:idx_contest_participant"`
	ContestID string `gorm:"uniqueIndex:idx_contest_participant"`
}

type Submission struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	UserID    string  `gorm:"index" json:"user_id"`
	ContestID *string `gorm:"index" json:"contest_id"` // nil for practice submissions
	ProblemID string  `gorm:"index" json:"problem_id"`

	Code     string `json:"code"`
	Language string `json:"language"`

	Status       SubmissionStatus `gorm:"index" json:"status"`
	Runtime      int              `json:"runtime"` // accumulated over passed tests, ms
	Memory       int              `json:"memory"`  // peak, KB
	TestsPassed  int              `json:"tests_passed"`
	TestsTotal   int              `json:"tests_total"`
	Score        int              `json:"score"`
	ErrorMessage *string          `json:"error_message"`
}

// Leaderboard is only persisted once a contest is finalized. Before that the
// ranking is a derived view recomputed from submissions on every read.
type Leaderboard struct {
	ID        uint `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"-"`

	ContestID   string    `gorm:"uniqueIndex" json:"contest_id"`
	Rankings    JSONText  `gorm:"type:text" json:"rankings"`
	IsFinalized bool      `json:"is_finalized"`
	LastUpdated time.Time `json:"last_updated"`
}
