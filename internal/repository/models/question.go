package models

import "database/sql"

// MultipleChoice is a row of the multiple_choice table.
type MultipleChoice struct {
	ID          int64          `db:"question_id"`
	Question    string         `db:"question"`
	LetterA     string         `db:"letter_a"`
	LetterB     string         `db:"letter_b"`
	LetterC     string         `db:"letter_c"`
	LetterD     string         `db:"letter_d"`
	Answer      string         `db:"answer"`
	Explanation sql.NullString `db:"explanation"`
	Timer       int            `db:"timer"`
	Points      int            `db:"points"`
}

// Identification is a row of the identification table.
type Identification struct {
	ID          int64          `db:"question_id"`
	Question    string         `db:"question"`
	Answer      string         `db:"answer"`
	Explanation sql.NullString `db:"explanation"`
	Timer       int            `db:"timer"`
	Points      int            `db:"points"`
}

// TrueOrFalse is a row of the true_or_false table.
type TrueOrFalse struct {
	ID          int64          `db:"question_id"`
	Question    string         `db:"question"`
	Answer      bool           `db:"answer"`
	Explanation sql.NullString `db:"explanation"`
	Timer       int            `db:"timer"`
	Points      int            `db:"points"`
}
