// Package seed holds the starter catalog written to an empty backend.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"baias/internal/catalog/models"
	dErrors "baias/pkg/domain-errors"
)

//go:embed initial.json
var initial []byte

// Document returns the starter document in canonical encoding.
func Document() []byte {
	return append([]byte(nil), initial...)
}

// Catalog returns a fresh copy of the starter tree.
func Catalog() *models.Catalog {
	c := models.NewCatalog()
	if err := json.Unmarshal(initial, c); err != nil {
		panic(fmt.Sprintf("seed: embedded document is invalid: %v", err))
	}
	return c
}

// Store is the persistence surface Apply needs.
type Store interface {
	Load(ctx context.Context) (*models.Catalog, error)
	Save(ctx context.Context, c *models.Catalog) error
}

// Apply writes the starter catalog when the store holds no document, or
// unconditionally when force is set. It reports whether it wrote.
// A corrupt existing document is left alone unless force is set.
func Apply(ctx context.Context, store Store, force bool) (bool, error) {
	if !force {
		_, err := store.Load(ctx)
		switch {
		case err == nil:
			return false, nil
		case !dErrors.HasCode(err, dErrors.CodeNotFound):
			return false, err
		}
	}
	if err := store.Save(ctx, Catalog()); err != nil {
		return false, err
	}
	return true, nil
}
