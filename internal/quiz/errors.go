package quiz

import "errors"

var (
	// ErrNoActiveQuestion is returned when an answer is submitted before
	// any question was generated.
	ErrNoActiveQuestion = errors.New("no active question")

	// ErrAlreadyAnswered is returned for a second submission against the
	// same question.
	ErrAlreadyAnswered = errors.New("question already answered")

	// ErrEmptyPool is returned when the category filter leaves no
	// eligible entries.
	ErrEmptyPool = errors.New("no words in this category")
)
