package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yumyai/ggcluster/config"
	"github.com/yumyai/ggcluster/internal/util"
	mydb "github.com/yumyai/ggcluster/pkg/db"

	_ "modernc.org/sqlite"
)

var regionsFlank int

// regionsCmd represents the regions command
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Report variable regions of the gene adjacency graph",
	Long: `Regions rebuilds the cluster adjacency graph from a built gene table
and lists every cluster the chromosome forks around, together with the
clusters reachable within a flank of hops. These are candidate
insertion or deletion sites, or leftover mis-groupings worth a look.`,
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

		graph, err := mydb.LoadAdjacencyGraph(conn)
		if err != nil {
			return err
		}

		for _, r := range graph.VariableRegions(regionsFlank) {
			names := make([]string, len(r.Groups))
			for i, g := range r.Groups {
				names[i] = mydb.ClusterID(g)
			}
			fmt.Fprintf(os.Stdout, "%s\t%s\n", mydb.ClusterID(r.Center), strings.Join(names, ","))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)

	regionsCmd.Flags().IntVarP(&regionsFlank, "flank", "f", 1, "how many hops around each fork to report")
}
