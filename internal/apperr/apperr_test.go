package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence_WrapsBothErrors(t *testing.T) {
	cause := errors.New("connection refused")
	err := Persistence("cart add", cause)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cart add")
}

func TestValidationError_As(t *testing.T) {
	err := fmt.Errorf("payment: %w", NewValidation("upiId", "doit contenir @"))

	var v *ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "upiId", v.Field)
	assert.True(t, IsValidation(err))
	assert.False(t, IsPrecondition(err))
}

func TestPreconditionError_Redirect(t *testing.T) {
	err := NewPrecondition("panier vide", "cart")

	assert.True(t, IsPrecondition(err))
	assert.Contains(t, err.Error(), "cart")
	assert.Equal(t, "prérequis manquant: x", NewPrecondition("x", "").Error())
}
