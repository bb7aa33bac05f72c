package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/internal/domain/entity"
)

func TestNoOp(t *testing.T) {
	n := NewNoOp()

	_, err := n.Embed(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, "noop", n.Model())
	assert.Equal(t, entity.EmbeddingProviderNoop, n.Name())
}

func TestOpenAI_Identity(t *testing.T) {
	o := NewOpenAI("sk-test")
	assert.NotEmpty(t, o.Model())
	assert.Equal(t, entity.EmbeddingProviderOpenAI, o.Name())
}

func TestNew(t *testing.T) {
	t.Run("disabled yields noop", func(t *testing.T) {
		p, err := New(Config{Enabled: false})
		require.NoError(t, err)
		assert.IsType(t, &NoOp{}, p)
	})

	t.Run("enabled without key", func(t *testing.T) {
		_, err := New(Config{Enabled: true})
		assert.Error(t, err)
	})

	t.Run("enabled with key", func(t *testing.T) {
		p, err := New(Config{Enabled: true, APIKey: "sk-test"})
		require.NoError(t, err)
		assert.IsType(t, &OpenAI{}, p)
	})
}
