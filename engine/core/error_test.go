package core_test

import (
	"errors"
	"testing"

	"github.com/compozy/reflow/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ErrorAndUnwrap(t *testing.T) {
	t.Run("Should render the wrapped message", func(t *testing.T) {
		cause := errors.New("boom")
		err := core.NewError(cause, core.CodeGuardExceeded, map[string]any{"iterations": 500})
		assert.Equal(t, "boom", err.Error())
		assert.Same(t, cause, err.Unwrap())
	})
	t.Run("Should default the message when cause is nil", func(t *testing.T) {
		err := core.NewError(nil, core.CodeInvalidInput, nil)
		assert.Equal(t, "unknown error", err.Error())
	})
	t.Run("Should be nil-safe", func(t *testing.T) {
		var err *core.Error
		assert.Equal(t, "", err.Error())
		assert.Nil(t, err.Unwrap())
		assert.Nil(t, err.AsMap())
	})
}

func TestError_Is(t *testing.T) {
	t.Run("Should match on code via errors.Is", func(t *testing.T) {
		err := core.NewError(errors.New("cycle"), core.CodeCircularDependency, nil)
		target := &core.Error{Code: core.CodeCircularDependency}
		assert.True(t, errors.Is(err, target))
	})
	t.Run("Should not match a different code", func(t *testing.T) {
		err := core.NewError(errors.New("cycle"), core.CodeCircularDependency, nil)
		target := &core.Error{Code: core.CodeUnschedulable}
		assert.False(t, errors.Is(err, target))
	})
}

func TestError_AsMap(t *testing.T) {
	t.Run("Should expose message, code and details", func(t *testing.T) {
		err := core.NewError(errors.New("bad interval"), core.CodeInvalidInterval, map[string]any{"start": 10})
		m := err.AsMap()
		require.NotNil(t, m)
		assert.Equal(t, "bad interval", m["message"])
		assert.Equal(t, core.CodeInvalidInterval, m["code"])
		assert.Equal(t, map[string]any{"start": 10}, m["details"])
	})
}
