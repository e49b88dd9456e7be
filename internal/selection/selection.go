// Package selection drives the five dependent pickers (sector, model, type
// code, type, bay) over a catalog and resolves the selected bay's items.
package selection

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"baias/internal/catalog"
	"baias/internal/catalog/models"
	dErrors "baias/pkg/domain-errors"
)

const (
	MsgIncomplete = "select all filters to see the items"
	MsgEmptyBay   = "this bay is empty"
)

// Controller holds a partial path into a catalog. Options are computed from
// the catalog on every call; the item list is resolved only by Select and
// Refresh, so callers render exactly what the last resolution saw.
type Controller struct {
	mu      sync.RWMutex
	catalog *models.Catalog
	path    models.Path
	items   models.Items
}

// New returns a Controller with nothing selected.
func New(c *models.Catalog) *Controller {
	return &Controller{catalog: c}
}

// SetCatalog swaps the catalog being browsed and re-resolves the selection
// against it. The path is kept even if it no longer exists.
func (c *Controller) SetCatalog(cat *models.Catalog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = cat
	c.resolve()
}

// Select sets the field at lvl to value and clears every field to its right.
// An empty value clears the field itself.
func (c *Controller) Select(lvl models.Level, value string) error {
	if !lvl.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid level %d", int(lvl)))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = c.path.Prefix(lvl).With(lvl, value)
	c.resolve()
	return nil
}

// SetPath replaces the whole selection, keeping descendants that Select
// would clear. Used after a rename moves the selected subtree.
func (c *Controller) SetPath(p models.Path) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = p
	c.resolve()
}

// Clear drops the whole selection.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = models.Path{}
	c.items = nil
}

// Refresh re-resolves the item list after the catalog changed underneath.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolve()
}

// Path returns the current selection.
func (c *Controller) Path() models.Path {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Options returns the choices offered for lvl: the catalog keys under the
// selected prefix, or nil when a field left of lvl is unset or names a key
// that does not exist.
func (c *Controller) Options(lvl models.Level) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !lvl.Valid() || c.path.Prefix(lvl).Depth() != int(lvl) {
		return nil
	}
	keys, err := catalog.ListChildren(c.catalog, lvl, c.path)
	if err != nil {
		return nil
	}
	return keys
}

// Items returns the items resolved for a complete selection. ok is false when
// the path is incomplete or no longer exists.
func (c *Controller) Items() (models.Items, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.items == nil {
		return nil, false
	}
	return c.items.Clone(), true
}

// resolve must hold mu.
func (c *Controller) resolve() {
	c.items = nil
	if !c.path.Complete() {
		return
	}
	items, err := catalog.Bay(c.catalog, c.path)
	if err != nil {
		return
	}
	if items == nil {
		items = models.Items{}
	}
	c.items = items
}

// Render writes a plain-text view of the pickers and the item list.
func (c *Controller) Render(w io.Writer) error {
	path := c.Path()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, lvl := range models.Levels {
		selected := path.Get(lvl)
		if selected == "" {
			selected = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", lvl, selected, strings.Join(c.Options(lvl), ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	items, ok := c.Items()
	switch {
	case !ok:
		_, err := fmt.Fprintln(w, MsgIncomplete)
		return err
	case len(items) == 0:
		_, err := fmt.Fprintln(w, MsgEmptyBay)
		return err
	}
	for i, item := range items {
		if _, err := fmt.Fprintf(w, "%3d. %s\n", i+1, item); err != nil {
			return err
		}
	}
	return nil
}
