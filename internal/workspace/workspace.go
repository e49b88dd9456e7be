// Package workspace is the admin's editing session against a remote catalog.
// Edits are applied to a copy of the working catalog, pushed whole, and only
// adopted locally once the server accepted them.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"baias/internal/catalog"
	"baias/internal/catalog/models"
	"baias/internal/selection"
	dErrors "baias/pkg/domain-errors"
)

//go:generate mockgen -source=workspace.go -destination=mocks/remote_mock.go -package=mocks Remote

// Remote is the server the workspace edits.
type Remote interface {
	GetData(ctx context.Context) (*models.Catalog, error)
	Status(ctx context.Context) (bool, error)
	Login(ctx context.Context, password string) error
	Logout(ctx context.Context) error
	Update(ctx context.Context, doc *models.Catalog) error
}

type Workspace struct {
	remote Remote
	logger *slog.Logger

	mu    sync.Mutex
	doc   *models.Catalog
	ctl   *selection.Controller
	admin bool
}

// Option configures a Workspace.
type Option func(*Workspace)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func New(remote Remote, opts ...Option) *Workspace {
	w := &Workspace{
		remote: remote,
		logger: slog.Default(),
		ctl:    selection.New(nil),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open fetches the catalog and the session's admin flag.
func (w *Workspace) Open(ctx context.Context) error {
	doc, err := w.remote.GetData(ctx)
	if err != nil {
		return err
	}
	admin, err := w.remote.Status(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc = doc
	w.admin = admin
	w.ctl.SetCatalog(doc)
	return nil
}

// Reload re-fetches the catalog, the only way to see other admins' saves.
// The selection is kept and re-resolved.
func (w *Workspace) Reload(ctx context.Context) error {
	doc, err := w.remote.GetData(ctx)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc = doc
	w.ctl.SetCatalog(doc)
	return nil
}

// Login makes the session admin. A rejected password leaves it anonymous.
func (w *Workspace) Login(ctx context.Context, password string) error {
	err := w.remote.Login(ctx, password)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.admin = err == nil
	return err
}

// Logout always leaves the workspace anonymous, even if the call failed.
func (w *Workspace) Logout(ctx context.Context) error {
	err := w.remote.Logout(ctx)
	w.mu.Lock()
	w.admin = false
	w.mu.Unlock()
	if err != nil {
		w.logger.WarnContext(ctx, "logout call failed", "error", err)
	}
	return err
}

func (w *Workspace) IsAdmin() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.admin
}

// Selection exposes the pickers for browsing.
func (w *Workspace) Selection() *selection.Controller { return w.ctl }

// Document returns a copy of the working catalog.
func (w *Workspace) Document() *models.Catalog {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.doc == nil {
		return nil
	}
	return w.doc.Clone()
}

// AddItem appends label to the selected bay.
func (w *Workspace) AddItem(ctx context.Context, label string) error {
	return w.mutate(ctx, "add item", func(c *models.Catalog, p models.Path) (models.Path, error) {
		if !p.Complete() {
			return p, dErrors.New(dErrors.CodeBadRequest, "select a bay first")
		}
		return p, catalog.AddItem(c, p, label)
	})
}

// RemoveItem drops label from the selected bay.
func (w *Workspace) RemoveItem(ctx context.Context, label string) error {
	return w.mutate(ctx, "remove item", func(c *models.Catalog, p models.Path) (models.Path, error) {
		if !p.Complete() {
			return p, dErrors.New(dErrors.CodeBadRequest, "select a bay first")
		}
		return p, catalog.RemoveItem(c, p, label)
	})
}

// AddNode creates name at lvl under the selection and selects it.
func (w *Workspace) AddNode(ctx context.Context, lvl models.Level, name string) error {
	return w.mutate(ctx, "add "+lvl.String(), func(c *models.Catalog, p models.Path) (models.Path, error) {
		prefix, err := requirePrefix(p, lvl)
		if err != nil {
			return p, err
		}
		if err := catalog.AddNode(c, lvl, prefix, name); err != nil {
			return p, err
		}
		keys, _ := catalog.ListChildren(c, lvl, prefix)
		return prefix.With(lvl, keys[len(keys)-1]), nil
	})
}

// RenameNode renames the selected node at lvl. It stays selected under the
// new name, together with whatever was selected beneath it.
func (w *Workspace) RenameNode(ctx context.Context, lvl models.Level, newName string) error {
	return w.mutate(ctx, "rename "+lvl.String(), func(c *models.Catalog, p models.Path) (models.Path, error) {
		prefix, err := requireSelected(p, lvl)
		if err != nil {
			return p, err
		}
		oldName := p.Get(lvl)
		if err := catalog.RenameNode(c, lvl, prefix, oldName, newName); err != nil {
			return p, err
		}
		keys, _ := catalog.ListChildren(c, lvl, prefix)
		renamed := oldName
		if !slices.Contains(keys, oldName) && len(keys) > 0 {
			renamed = keys[len(keys)-1]
		}
		return p.With(lvl, renamed), nil
	})
}

// DeleteNode removes the selected node at lvl and clears the selection from
// lvl rightwards.
func (w *Workspace) DeleteNode(ctx context.Context, lvl models.Level) error {
	return w.mutate(ctx, "delete "+lvl.String(), func(c *models.Catalog, p models.Path) (models.Path, error) {
		prefix, err := requireSelected(p, lvl)
		if err != nil {
			return p, err
		}
		if err := catalog.DeleteNode(c, lvl, prefix, p.Get(lvl)); err != nil {
			return p, err
		}
		return prefix, nil
	})
}

// mutate applies edit to a copy of the working catalog, pushes the copy and
// adopts it only after the server accepted it.
func (w *Workspace) mutate(ctx context.Context, op string, edit func(*models.Catalog, models.Path) (models.Path, error)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.admin {
		return dErrors.New(dErrors.CodeUnauthorized, "log in as admin to "+op)
	}
	if w.doc == nil {
		return dErrors.New(dErrors.CodeBadRequest, "workspace is not open")
	}

	next := w.doc.Clone()
	path, err := edit(next, w.ctl.Path())
	if err != nil {
		return err
	}
	if err := w.remote.Update(ctx, next); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			w.admin = false
		}
		w.logger.WarnContext(ctx, "failed to push catalog", "op", op, "error", err)
		return err
	}
	w.doc = next
	w.ctl.SetCatalog(next)
	w.ctl.SetPath(path)
	return nil
}

// requirePrefix checks every level left of lvl is selected.
func requirePrefix(p models.Path, lvl models.Level) (models.Path, error) {
	if !lvl.Valid() {
		return p, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid level %d", int(lvl)))
	}
	prefix := p.Prefix(lvl)
	if prefix.Depth() != int(lvl) {
		return p, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("select a %s first", models.Levels[prefix.Depth()]))
	}
	return prefix, nil
}

// requireSelected checks the node at lvl and everything left of it is selected.
func requireSelected(p models.Path, lvl models.Level) (models.Path, error) {
	prefix, err := requirePrefix(p, lvl)
	if err != nil {
		return p, err
	}
	if p.Get(lvl) == "" {
		return p, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("select a %s first", lvl))
	}
	return prefix, nil
}
