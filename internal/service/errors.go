package service

import (
	"errors"

	"lexicon/internal/model"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalid          = errors.New("invalid")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// TranslationConflictError is returned when a (key, locale) pair already
// belongs to another live record.
type TranslationConflictError struct {
	Existing model.Translation
}

func (e *TranslationConflictError) Error() string {
	return "translation already exists for key and locale"
}

func (e *TranslationConflictError) Is(target error) bool {
	return target == ErrConflict
}
