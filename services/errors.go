package services

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxConceptLength bounds a concept so it fits the unique text column.
const MaxConceptLength = 500

var (
	ErrEmptyConcept    = errors.New("concept is empty")
	ErrConceptTooLong  = errors.New("concept is too long")
	ErrContentNotFound = errors.New("generated content not found")
)

// NormalizeConcept trims raw and validates what remains.
func NormalizeConcept(raw string) (string, error) {
	concept := strings.TrimSpace(raw)
	if concept == "" {
		return "", ErrEmptyConcept
	}
	if utf8.RuneCountInString(concept) > MaxConceptLength {
		return "", ErrConceptTooLong
	}
	return concept, nil
}
