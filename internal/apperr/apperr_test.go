package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("tagged error returns its kind", func(t *testing.T) {
		err := New(InvalidInput, "bad coordinates")
		assert.Equal(t, InvalidInput, KindOf(err))
	})

	t.Run("untagged error defaults to internal", func(t *testing.T) {
		assert.Equal(t, Internal, KindOf(errors.New("boom")))
	})

	t.Run("plain string re-wrap loses the kind while the tagged error keeps it", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(TransientUpstream, "feed unavailable", cause)
		wrapped := errors.New("context: " + err.Error())
		assert.Equal(t, Internal, KindOf(wrapped)) // plain re-wrap loses the Kind, as expected
		assert.Equal(t, TransientUpstream, KindOf(err))
	})
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("pool exhausted")
	err := Wrap(ResourceExhausted, "no connections", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "no connections")
	assert.Contains(t, err.Error(), "pool exhausted")
}

func TestNewHasNoCause(t *testing.T) {
	err := New(NoDataForMonth, "2099-01 has no data")
	assert.Nil(t, err.Unwrap())
	assert.NotContains(t, err.Error(), "<nil>")
}
