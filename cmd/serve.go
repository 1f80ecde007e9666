package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eykd/tabvet/internal/config"
)

// shutdownTimeout bounds how long serve waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// ServeOptions carries the flags that shape the HTTP server.
type ServeOptions struct {
	ConfigDir string
	DataRoot  string
	Workers   int
}

// Server is a long-running HTTP server.
type Server interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

// ServerFactory builds a server from serve's flags.
type ServerFactory func(opts ServeOptions) Server

// NewServeCmd creates the serve command. It runs until the command's
// context is cancelled, then shuts the server down gracefully.
func NewServeCmd(factory ServerFactory, cfg *config.Config) *cobra.Command {
	var (
		addr string
		opts ServeOptions
	)

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serve validation runs and metrics over HTTP",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Workers < 1 {
				return fmt.Errorf("invalid --workers %d: must be at least 1", opts.Workers)
			}
			srv := factory(opts)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			select {
			case err := <-errCh:
				if err != nil {
					return &ContextError{Op: "serve", Path: addr, Err: err}
				}
				return nil
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return &ContextError{Op: "shutdown", Err: err}
			}
			if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
				return &ContextError{Op: "serve", Path: addr, Err: err}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", cfg.Addr, "Address to listen on")
	cmd.Flags().StringVar(&opts.ConfigDir, "config-dir", cfg.ConfigDir, "Directory holding raw.yaml and source.yaml")
	cmd.Flags().StringVar(&opts.DataRoot, "data-root", "", "Confine requested base paths to this directory")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "Files validated concurrently within a folder")

	return cmd
}
