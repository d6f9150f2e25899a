package cmd

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/ggcluster/config"
	"github.com/yumyai/ggcluster/internal/util"
	"github.com/yumyai/ggcluster/logger"
	mydb "github.com/yumyai/ggcluster/pkg/db"
	"github.com/yumyai/ggcluster/pkg/server"

	_ "modernc.org/sqlite"
)

var servePort int

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a built gene table over a JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.NewConfig()
		if err != nil {
			return err
		}
		if !util.FileExists(c.DB) {
			return fmt.Errorf("no gene table at %s, run build first", c.DB)
		}

		conn, err := sql.Open("sqlite", c.DB)
		if err != nil {
			return fmt.Errorf("open %s: %w", c.DB, err)
		}
		defer conn.Close()

		if _, err := mydb.ListClusters(conn); err != nil {
			return fmt.Errorf("%s is not a gene table: %w", c.DB, err)
		}

		router := server.NewRouter(conn)

		addr := fmt.Sprintf("0.0.0.0:%d", servePort)
		logger.Info("Server starting", zap.String("addr", addr), zap.String("db", c.DB))
		return router.Run(addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP service port")
}
