package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

func newGood(id, name string) *entity.Good {
	return &entity.Good{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
}

func mustGood(t *testing.T, store *memory.Store, name string) string {
	t.Helper()
	g, err := findGood(context.Background(), store.Repos(), name)
	require.NoError(t, err)
	require.NotNil(t, g, name)
	return g.ID
}
