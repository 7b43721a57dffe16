package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/lipidflow-cli/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve saved runs over HTTP (JSON API and plotly pages)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		addr := serveAddr
		if addr == "" {
			addr = c.ServeAddr
		}
		h := server.NewHandler(db, renderOptions(c, 0, 0, 0, ""), logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Printf("✓ Serving runs from %s on http://%s\n", c.DBPath, addr)
		return server.ListenAndServe(ctx, addr, h.Router(c.CORSOrigins), logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config serve_addr)")
}
