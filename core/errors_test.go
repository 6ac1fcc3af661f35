package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"kind only", &Error{Kind: KindLakeNotFound}, "lake_not_found"},
		{"message", newError(KindSpeciesNotFound, nil, "species '%s' not found", "X"), "species 'X' not found"},
		{"cause", newError(KindPredictionFailed, errors.New("boom"), "prediction failed"), "prediction failed: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorIs(t *testing.T) {
	cause := errors.New("root cause")
	err := fmt.Errorf("outer: %w", newError(KindInvalidInput, cause, "invalid environment"))

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrSpeciesNotFound)
	assert.NotErrorIs(t, err, ErrPredictionFailed)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindLakeNotFound, KindOf(newError(KindLakeNotFound, nil, "x")))
	assert.Equal(t, KindPredictionFailed, KindOf(fmt.Errorf("wrap: %w", ErrPredictionFailed)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
