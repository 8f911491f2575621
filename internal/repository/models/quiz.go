package models

import (
	"time"
)

// Quiz is a row of the quizzes table. QuestionsID holds ids of rows in the
// question table selected by Type.
type Quiz struct {
	ID          int64     `db:"quiz_id"`
	UserID      int64     `db:"user_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Topic       string    `db:"topic"`
	Type        string    `db:"type"`
	QuestionsID IntList   `db:"questions_id"`
	Visibility  bool      `db:"visibility"`
	ImagePath   string    `db:"image_path"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// QuizAnswer is a row of the quiz_answers table.
type QuizAnswer struct {
	ID             int64      `db:"quiz_answer_id"`
	UserID         int64      `db:"user_id"`
	QuizID         int64      `db:"quiz_id"`
	Type           string     `db:"type"`
	Points         IntList    `db:"points"`
	Answers        StringList `db:"answers"`
	RemainingTimes IntList    `db:"remaining_times"`
	Questions      StringList `db:"questions"`
	CreatedAt      time.Time  `db:"created_at"`
}
