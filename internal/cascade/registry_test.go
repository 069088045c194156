package cascade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wordkeeper/internal/models"
)

func TestRegistry_RuleReplacesRelations(t *testing.T) {
	registry := Default()

	rule, relations := registry.Resolve(models.KindTagCategory, Delete)
	assert.Nil(t, rule)
	require.Len(t, relations, 1)
	assert.Equal(t, models.KindTag, relations[0].Target)

	rule, relations = registry.Resolve(models.KindTagCategory, Restore)
	require.NotNil(t, rule)
	assert.Empty(t, relations)
}

func TestRegistry_TagRestoreHasNoRules(t *testing.T) {
	rule, relations := Default().Resolve(models.KindTag, Restore)
	assert.Nil(t, rule)
	assert.Empty(t, relations)
}

func TestRegistry_DuplicateRulePanics(t *testing.T) {
	registry := NewRegistry()
	rule := Rule{Name: "noop", Kind: models.KindTag, Direction: Restore,
		Select: func(context.Context, Graph, Node) ([]Node, error) { return nil, nil }}
	registry.AddRule(rule)
	assert.Panics(t, func() { registry.AddRule(rule) })
}

func TestDirection(t *testing.T) {
	assert.True(t, Delete.Target())
	assert.False(t, Restore.Target())
	assert.Equal(t, Delete, DirectionFor(true))
	assert.Equal(t, Restore, DirectionFor(false))
}
