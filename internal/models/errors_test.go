package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidInput, KindOf(InvalidInput("bad")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", NotFound("missing"))))
	assert.Equal(t, KindInternal, KindOf(Internal("boom", errors.New("db down"))))
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))
}

func TestError_Message(t *testing.T) {
	cause := errors.New("db down")
	err := Internal("Failed to save user data", cause)

	assert.Equal(t, "Failed to save user data: db down", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "User not found", NotFound("User not found").Error())
}
