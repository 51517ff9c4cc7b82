package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray stores an ordered list of strings as a JSONB column
type StringArray []string

// Scan implements sql.Scanner so gorm can read JSONB data
func (a *StringArray) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value")
	}
	return json.Unmarshal(bytes, a)
}

// Value implements driver.Valuer so gorm can write JSONB data
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Quiz is a generated, ordered set of questions derived from a note.
// Score is nil until the quiz has been taken; a retake overwrites it.
type Quiz struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	UserID    uint       `gorm:"not null;index" json:"userId"`
	NoteID    uint       `gorm:"not null;index" json:"noteId"`
	Score     *int       `json:"score"`
	Questions []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Question is a single multiple-choice item. Immutable once generated.
// Insertion order is presentation order. The correct answer is never
// serialized to the client; answers are checked server-side.
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	QuizID        uint        `gorm:"not null;index" json:"quizId"`
	Text          string      `gorm:"size:500;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswer string      `gorm:"size:255;not null" json:"-"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// IsCorrect reports whether the selected option matches the correct
// answer. Equality is exact string match, no normalization.
func (q *Question) IsCorrect(option string) bool {
	return option == q.CorrectAnswer
}
