package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baias/internal/catalog"
	"baias/internal/catalog/gateway"
	"baias/internal/catalog/models"
	"baias/internal/catalog/seed"
	"baias/internal/catalog/store/memory"
	dErrors "baias/pkg/domain-errors"
)

func TestStarterCatalog(t *testing.T) {
	c := seed.Catalog()
	assert.Equal(t, []string{"Região E", "Região C"}, c.Sectors.Keys())

	items, err := catalog.Bay(c, models.Path{
		Sector: "Região E", Model: "Honda HR-V", TypeCode: "3GN", Type: "3M6XMF7", Bay: "Baia 01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.Items{"Item X", "Item 1", "Item D"}, items)

	encoded, err := gateway.Encode(c)
	require.NoError(t, err)
	assert.Equal(t, string(seed.Document()), string(encoded), "embedded document must be canonical")
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	t.Run("writes into an empty store", func(t *testing.T) {
		gw := gateway.New(memory.New())
		wrote, err := seed.Apply(ctx, gw, false)
		require.NoError(t, err)
		assert.True(t, wrote)

		c, err := gw.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, c.Sectors.Len())
	})

	t.Run("leaves an existing document alone", func(t *testing.T) {
		gw := gateway.New(memory.NewWithDocument([]byte("{}\n")))
		wrote, err := seed.Apply(ctx, gw, false)
		require.NoError(t, err)
		assert.False(t, wrote)

		c, err := gw.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, c.Sectors.Len())
	})

	t.Run("refuses to overwrite a corrupt document without force", func(t *testing.T) {
		gw := gateway.New(memory.NewWithDocument([]byte("not json")))
		_, err := seed.Apply(ctx, gw, false)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeCorruptDocument))

		wrote, err := seed.Apply(ctx, gw, true)
		require.NoError(t, err)
		assert.True(t, wrote)
	})
}
