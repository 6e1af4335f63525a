package apperrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCopiesStillMatchSentinel(t *testing.T) {
	err := ErrNotFound.WithMessage("Opportunity not found")
	require.True(t, errors.Is(err, ErrNotFound))
	require.False(t, errors.Is(err, ErrForbidden))
	require.Equal(t, "Resource not found", ErrNotFound.Message)
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	err := ErrMissingField.WithDetail("missingFields", []string{"title"})
	require.Len(t, err.Details, 1)
	require.Nil(t, ErrMissingField.Details)
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("boom")
	appErr := From(cause)
	require.Equal(t, http.StatusInternalServerError, appErr.Status)
	require.ErrorIs(t, appErr, cause)

	wrapped := From(ErrConflict)
	require.Equal(t, ErrConflict.Code, wrapped.Code)
	require.Nil(t, From(nil))
}
