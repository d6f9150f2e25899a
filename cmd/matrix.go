package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yumyai/ggcluster/config"
	"github.com/yumyai/ggcluster/internal/util"
	mydb "github.com/yumyai/ggcluster/pkg/db"

	_ "modernc.org/sqlite"
)

var matrixOut string

// matrixCmd represents the matrix command
var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Export the clusters x genomes count matrix as TSV",
	Long: `Matrix reads a built gene table and writes one row per cluster with
the per-genome gene counts, the view pangenome tools consume for
core/accessory analysis.`,
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

		m, err := mydb.LoadMatrix(conn)
		if err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if matrixOut != "" {
			f, err := os.Create(matrixOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return writeMatrix(out, m)
	},
}

func init() {
	rootCmd.AddCommand(matrixCmd)

	matrixCmd.Flags().StringVarP(&matrixOut, "out", "o", "", "output path, stdout when empty")
}

func writeMatrix(out io.Writer, m *mydb.Matrix) error {
	header := append([]string{"cluster_id"}, m.GenomeIDs...)
	if _, err := fmt.Fprintln(out, strings.Join(header, "\t")); err != nil {
		return err
	}
	for i, clusterID := range m.ClusterIDs {
		row := make([]string, 0, len(m.GenomeIDs)+1)
		row = append(row, clusterID)
		for _, n := range m.Counts[i] {
			row = append(row, strconv.Itoa(n))
		}
		if _, err := fmt.Fprintln(out, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}
