package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/newhook/playlog/internal/api"
	"github.com/newhook/playlog/internal/ingest"
	"github.com/newhook/playlog/internal/logging"
)

var (
	flagServeAddr  string
	flagServeDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored runs over HTTP",
	Long: `Serve the run API:

  GET    /api/logs/
  POST   /api/logs/
  GET    /api/logs/:id/
  DELETE /api/logs/:id/
  GET    /api/logs/:id/hosts/
  GET    /api/logs/:id/tasks/

The listen address defaults to server.addr in config.toml.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&flagServeDebug, "debug", false, "run gin in debug mode")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := GetContext()
	proj, err := openProject(ctx)
	if err != nil {
		return err
	}
	defer proj.Close()

	if !flagServeDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	addr := flagServeAddr
	if addr == "" {
		addr = proj.Config.Server.GetAddr()
	}

	importer := ingest.NewImporter(proj.DB, proj.Config.Parser.Options())
	server := api.New(proj.DB, importer, proj.Config.Server.GetCacheTTL())

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", proj.Root, addr)
	logging.Info("serving", "addr", addr, "root", proj.Root)
	return server.Run(ctx, addr)
}
