package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"megrep/pkg/server"
	"megrep/pkg/ui"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the results viewer",
	Long: `Serve the project root over HTTP with a viewer at / for browsing results.json
and comparing every original with its AVIF and WebP versions.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "localhost:3000", "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp(cmd, nil, false)
	if err != nil {
		return err
	}
	defer cleanup()

	p := a.cfg.Paths
	srv, err := server.New(server.Options{
		Root:        p.Root(),
		Addr:        serveAddr,
		ContentsURL: a.resolver.DisplayPath(p.Resolve(p.ContentsDir)),
		ResultsURL:  a.resolver.DisplayPath(p.Resolve(p.ResultsFile)),
		Logger:      a.log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintInfo("Viewer", "http://"+srv.Addr()+"/")
	ui.PrintInfo("Serving", p.Root())
	return srv.ListenAndServe(ctx)
}
