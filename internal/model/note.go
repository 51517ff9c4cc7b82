package model

import "time"

// Note is user-authored or uploaded text content with an optional
// AI-generated summary
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Summary   string    `gorm:"type:text" json:"summary"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	SubjectID *uint     `json:"subjectId,omitempty"`
	Quizzes   []Quiz    `gorm:"foreignKey:NoteID" json:"quizzes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
