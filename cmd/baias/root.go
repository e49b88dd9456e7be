package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"baias/internal/catalog/models"
	"baias/internal/client"
	"baias/internal/platform/config"
	"baias/internal/platform/logger"
	"baias/internal/selection"
	"baias/internal/workspace"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "baias",
		Short:         "Bay catalog: sector, model, type code, type and bay with their items",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newSeedCmd(), newBrowseCmd(), newEditCmd())
	return root
}

// pathFlags binds one flag per level of the hierarchy.
type pathFlags struct {
	keys [5]string
}

func (p *pathFlags) bind(cmd *cobra.Command) {
	for _, lvl := range models.Levels {
		cmd.PersistentFlags().StringVar(&p.keys[lvl], lvl.String(), "", "selected "+lvl.String())
	}
}

// apply selects the flagged keys left to right, stopping at the first unset one.
func (p *pathFlags) apply(ctl *selection.Controller) error {
	for _, lvl := range models.Levels {
		if p.keys[lvl] == "" {
			return nil
		}
		if err := ctl.Select(lvl, p.keys[lvl]); err != nil {
			return err
		}
	}
	return nil
}

// remoteFlags locate the server.
type remoteFlags struct {
	server  string
	timeout time.Duration
}

func (r *remoteFlags) bind(cmd *cobra.Command, cfg config.Client) {
	cmd.PersistentFlags().StringVar(&r.server, "server", cfg.ServerURL, "baias server URL")
	cmd.PersistentFlags().DurationVar(&r.timeout, "timeout", cfg.Timeout, "per-request timeout")
}

// open connects a workspace and loads the catalog. When password is set the
// session logs in first so the workspace opens as admin.
func (r *remoteFlags) open(ctx context.Context, password string) (*workspace.Workspace, error) {
	c, err := client.New(r.server, client.WithTimeout(r.timeout))
	if err != nil {
		return nil, err
	}
	ws := workspace.New(c, workspace.WithLogger(logger.Discard()))
	if password != "" {
		if err := ws.Login(ctx, password); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}
	if err := ws.Open(ctx); err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", r.server, err)
	}
	return ws, nil
}
