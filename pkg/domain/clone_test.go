package domain_test

import (
	"testing"

	"github.com/aretw0/statesim/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepCopy_NestedStructures(t *testing.T) {
	src := map[string]any{
		"name": "order-1",
		"tags": []any{"a", "b"},
		"meta": map[string]any{
			"retries": 2,
			"owner":   map[string]any{"id": "u1"},
		},
	}

	copied, ok := domain.DeepCopy(src).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, src, copied)

	copied["meta"].(map[string]any)["retries"] = 99
	copied["tags"].([]any)[0] = "mutated"

	assert.Equal(t, 2, src["meta"].(map[string]any)["retries"])
	assert.Equal(t, "a", src["tags"].([]any)[0])
}

func TestDeepCopy_Scalars(t *testing.T) {
	assert.Equal(t, 42, domain.DeepCopy(42))
	assert.Equal(t, "x", domain.DeepCopy("x"))
	assert.Nil(t, domain.DeepCopy(nil))
}

func TestCopyContext_NilYieldsEmptyMap(t *testing.T) {
	copied := domain.CopyContext(nil)
	require.NotNil(t, copied)
	assert.Empty(t, copied)

	src := map[string]any{"water": 100}
	copied = domain.CopyContext(src)
	copied["water"] = 0
	assert.Equal(t, 100, src["water"])
}
