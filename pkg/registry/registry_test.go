package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/models"
)

func noopHandler(_ context.Context, _ map[string]any, _ models.ExecutionContext, _ *slog.Logger) (map[string]any, error) {
	return nil, nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := New(slog.Default())

	err := reg.Register(models.ActionDefinition{
		ID:          "cache.get",
		Name:        "Cache Get",
		Description: "Reads a value from the cache",
	}, noopHandler)
	require.NoError(t, err)

	entry, ok := reg.Lookup("cache.get")
	require.True(t, ok)
	assert.Equal(t, "cache.get", entry.Definition.ID)
	assert.Equal(t, "Cache Get", entry.Definition.Name)
	assert.NotNil(t, entry.Handler)

	_, ok = reg.Lookup("cache.set")
	assert.False(t, ok)
}

func TestRegistry_Register_Validation(t *testing.T) {
	reg := New(slog.Default())

	err := reg.Register(models.ActionDefinition{ID: ""}, noopHandler)
	assert.Error(t, err)

	err = reg.Register(models.ActionDefinition{ID: "   "}, noopHandler)
	assert.Error(t, err)

	err = reg.Register(models.ActionDefinition{ID: "valid"}, nil)
	assert.Error(t, err)
}

func TestRegistry_RegisterFunc_Defaults(t *testing.T) {
	reg := New(slog.Default())

	require.NoError(t, reg.RegisterFunc("echo", noopHandler))

	entry, ok := reg.Lookup("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", entry.Definition.Name)
	assert.Equal(t, "Action: echo", entry.Definition.Description)
}

func TestRegistry_Register_LastWriteWins(t *testing.T) {
	reg := New(slog.Default())

	first := func(_ context.Context, _ map[string]any, _ models.ExecutionContext, _ *slog.Logger) (map[string]any, error) {
		return map[string]any{"handler": "first"}, nil
	}
	second := func(_ context.Context, _ map[string]any, _ models.ExecutionContext, _ *slog.Logger) (map[string]any, error) {
		return map[string]any{"handler": "second"}, nil
	}

	require.NoError(t, reg.RegisterFunc("echo", first))
	require.NoError(t, reg.RegisterFunc("echo", second))

	entry, ok := reg.Lookup("echo")
	require.True(t, ok)

	output, err := entry.Handler(context.Background(), nil, models.ExecutionContext{}, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "second", output["handler"])

	assert.Len(t, reg.Actions(), 1)
}

func TestRegistry_Actions_SortedByID(t *testing.T) {
	reg := New(slog.Default())

	for _, id := range []string{"redis.ttl", "redis.get", "redis.set", "redis.del"} {
		require.NoError(t, reg.RegisterFunc(id, noopHandler))
	}

	defs := reg.Actions()
	require.Len(t, defs, 4)

	ids := make([]string, 0, len(defs))
	for _, def := range defs {
		ids = append(ids, def.ID)
	}

	assert.Equal(t, []string{"redis.del", "redis.get", "redis.set", "redis.ttl"}, ids)
}
