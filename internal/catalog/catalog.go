// Package catalog implements the mutation and lookup operations of the bay
// catalog. Every write validates existence and uniqueness before touching the
// tree, so a rejected operation leaves the catalog exactly as it was.
package catalog

import (
	"fmt"
	"strings"

	"baias/internal/catalog/models"
	dErrors "baias/pkg/domain-errors"
	"baias/pkg/platform/sentinel"
)

// level adapts one ordered mapping of the tree to the operations that do not
// care what kind of child it holds.
type level interface {
	keys() []string
	has(key string) bool
	add(key string)
	rename(oldKey, newKey string)
	remove(key string)
}

type childSet[V any] struct {
	c     *models.Children[V]
	empty func() V
}

func (s childSet[V]) keys() []string      { return s.c.Keys() }
func (s childSet[V]) has(key string) bool { return s.c.Has(key) }
func (s childSet[V]) add(key string)      { s.c.Set(key, s.empty()) }
func (s childSet[V]) remove(key string)   { s.c.Delete(key) }

// rename copies the subtree under newKey (appended last) and drops oldKey.
func (s childSet[V]) rename(oldKey, newKey string) {
	v, _ := s.c.Get(oldKey)
	s.c.Set(newKey, v)
	s.c.Delete(oldKey)
}

// locate walks prefix down to the mapping that holds the keys of lvl.
func locate(c *models.Catalog, lvl models.Level, prefix models.Path) (level, error) {
	if !lvl.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid level %d", int(lvl)))
	}
	if c == nil {
		return nil, notFound(models.LevelSector, prefix.Sector)
	}
	if lvl == models.LevelSector {
		return childSet[*models.Sector]{&c.Sectors, models.NewSector}, nil
	}
	sector, ok := c.Sectors.Get(prefix.Sector)
	if !ok {
		return nil, notFound(models.LevelSector, prefix.Sector)
	}
	if lvl == models.LevelModel {
		return childSet[*models.Model]{&sector.Models, models.NewModel}, nil
	}
	model, ok := sector.Models.Get(prefix.Model)
	if !ok {
		return nil, notFound(models.LevelModel, prefix.Model)
	}
	if lvl == models.LevelTypeCode {
		return childSet[*models.TypeCode]{&model.TypeCodes, models.NewTypeCode}, nil
	}
	typeCode, ok := model.TypeCodes.Get(prefix.TypeCode)
	if !ok {
		return nil, notFound(models.LevelTypeCode, prefix.TypeCode)
	}
	if lvl == models.LevelType {
		return childSet[*models.Type]{&typeCode.Types, models.NewType}, nil
	}
	typ, ok := typeCode.Types.Get(prefix.Type)
	if !ok {
		return nil, notFound(models.LevelType, prefix.Type)
	}
	return childSet[models.Items]{&typ.Bays, models.NewItems}, nil
}

// ListChildren returns the keys stored at lvl under prefix, in document order.
func ListChildren(c *models.Catalog, lvl models.Level, prefix models.Path) ([]string, error) {
	l, err := locate(c, lvl, prefix)
	if err != nil {
		return nil, err
	}
	return l.keys(), nil
}

// AddNode inserts an empty node named key at lvl under prefix.
func AddNode(c *models.Catalog, lvl models.Level, prefix models.Path, key string) error {
	key, err := requireName(lvl, key)
	if err != nil {
		return err
	}
	l, err := locate(c, lvl, prefix)
	if err != nil {
		return err
	}
	if l.has(key) {
		return conflict(lvl, key)
	}
	l.add(key)
	return nil
}

// RenameNode rebinds the subtree at oldKey to newKey. The renamed node moves
// to the end of its siblings.
func RenameNode(c *models.Catalog, lvl models.Level, prefix models.Path, oldKey, newKey string) error {
	newKey, err := requireName(lvl, newKey)
	if err != nil {
		return err
	}
	l, err := locate(c, lvl, prefix)
	if err != nil {
		return err
	}
	if !l.has(oldKey) {
		return notFound(lvl, oldKey)
	}
	if newKey == oldKey {
		return nil
	}
	if l.has(newKey) {
		return conflict(lvl, newKey)
	}
	l.rename(oldKey, newKey)
	return nil
}

// DeleteNode removes key and everything beneath it. A key that is already
// gone is not an error; a missing prefix still is.
func DeleteNode(c *models.Catalog, lvl models.Level, prefix models.Path, key string) error {
	l, err := locate(c, lvl, prefix)
	if err != nil {
		return err
	}
	l.remove(key)
	return nil
}

// Bay returns a copy of the items stored at the complete path p.
func Bay(c *models.Catalog, p models.Path) (models.Items, error) {
	items, err := bayItems(c, p)
	if err != nil {
		return nil, err
	}
	return items.Clone(), nil
}

// AddItem appends label to the bay at p unless an identical label is there.
func AddItem(c *models.Catalog, p models.Path, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return dErrors.New(dErrors.CodeBadRequest, "item label is required")
	}
	items, err := bayItems(c, p)
	if err != nil {
		return err
	}
	if items.Contains(label) {
		return dErrors.Wrap(sentinel.ErrConflict, dErrors.CodeConflict,
			fmt.Sprintf("item %q already in bay %q", label, p.Bay))
	}
	setBay(c, p, append(items.Clone(), label))
	return nil
}

// RemoveItem drops the first exact match of label; absent labels are ignored.
func RemoveItem(c *models.Catalog, p models.Path, label string) error {
	items, err := bayItems(c, p)
	if err != nil {
		return err
	}
	return removeAt(c, p, items, items.Index(label))
}

// RemoveItemAt drops the item at index; an out-of-range index is ignored.
func RemoveItemAt(c *models.Catalog, p models.Path, index int) error {
	items, err := bayItems(c, p)
	if err != nil {
		return err
	}
	return removeAt(c, p, items, index)
}

func removeAt(c *models.Catalog, p models.Path, items models.Items, index int) error {
	if index < 0 || index >= len(items) {
		return nil
	}
	out := make(models.Items, 0, len(items)-1)
	out = append(out, items[:index]...)
	out = append(out, items[index+1:]...)
	setBay(c, p, out)
	return nil
}

func bayItems(c *models.Catalog, p models.Path) (models.Items, error) {
	bays, err := bayMap(c, p)
	if err != nil {
		return nil, err
	}
	items, ok := bays.Get(p.Bay)
	if !ok {
		return nil, notFound(models.LevelBay, p.Bay)
	}
	return items, nil
}

func setBay(c *models.Catalog, p models.Path, items models.Items) {
	bays, _ := bayMap(c, p)
	bays.Set(p.Bay, items)
}

func bayMap(c *models.Catalog, p models.Path) (*models.Children[models.Items], error) {
	l, err := locate(c, models.LevelBay, p)
	if err != nil {
		return nil, err
	}
	return l.(childSet[models.Items]).c, nil
}

func requireName(lvl models.Level, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("%s name is required", lvl))
	}
	return key, nil
}

func notFound(lvl models.Level, key string) error {
	return dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, fmt.Sprintf("%s %q", lvl, key))
}

func conflict(lvl models.Level, key string) error {
	return dErrors.Wrap(sentinel.ErrConflict, dErrors.CodeConflict, fmt.Sprintf("%s %q already exists", lvl, key))
}
