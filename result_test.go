package travelkit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := Ok(42)
		assert.True(t, r.IsOk())
		assert.Equal(t, 42, r.Value())
		assert.Nil(t, r.Error())

		v, err := r.Unpack()
		assert.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("err", func(t *testing.T) {
		r := Err[int](NewError(KindPastDate, "past"))
		assert.False(t, r.IsOk())
		assert.Equal(t, 0, r.Value())
		assert.Equal(t, KindPastDate, r.Error().Kind)

		_, err := r.Unpack()
		assert.ErrorIs(t, err, ErrPastDate)
	})

	t.Run("err with nil is still a failure", func(t *testing.T) {
		r := Err[string](nil)
		assert.False(t, r.IsOk())
		assert.Equal(t, KindSystemError, r.Error().Kind)
	})

	t.Run("from pair", func(t *testing.T) {
		assert.True(t, From("x", nil).IsOk())

		r := From("", errors.New("plain"))
		assert.False(t, r.IsOk())
		assert.Equal(t, KindSystemError, r.Error().Kind)
	})
}
