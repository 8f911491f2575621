package seedmodels

import "encoding/json"

// SeedOwner is one account in the seed file together with the quizzes it authors.
type SeedOwner struct {
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Quizzes  []json.RawMessage `json:"quizzes"`
}

// Seed is the top-level document of the seed file.
type Seed struct {
	Owners []SeedOwner `json:"owners"`
}
