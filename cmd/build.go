package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mingzhi/gomath/stat/desc/meanvar"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/ggcluster/config"
	"github.com/yumyai/ggcluster/logger"
	"github.com/yumyai/ggcluster/pkg/cluster"
	mydb "github.com/yumyai/ggcluster/pkg/db"
	"github.com/yumyai/ggcluster/pkg/fasta"
	"github.com/yumyai/ggcluster/pkg/model"

	_ "modernc.org/sqlite"
)

var genesPath string
var positionsPath string

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Group genes into clusters and write the gene table",
	Long: `Build reads every gene of the pangenome from a multi-FASTA file,
groups corresponding genes in two stages and writes the resulting gene
table to a sqlite database.

Headers follow the genome|contig|gene convention. Chromosomal positions
come from a separate tab-separated file; genes without a position are
still grouped, on sequence similarity alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.NewConfig()
		if err != nil {
			return err
		}
		return runBuild(cmd.Context(), c)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&genesPath, "genes", "g", "", "path to a multi-FASTA file with all genes")
	buildCmd.Flags().StringVarP(&positionsPath, "positions", "p", "", "path to a TSV with gene positions")

	buildCmd.MarkFlagRequired("genes")
}

func runBuild(ctx context.Context, c config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	genes, err := fasta.OpenGenes(ctx, genesPath)
	if err != nil {
		return fmt.Errorf("read genes: %w", err)
	}
	logger.Info("loaded genes", zap.String("path", genesPath), zap.Int("genes", len(genes)))

	if positionsPath != "" {
		missing, err := fasta.LoadPositions(positionsPath, genes)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}
		if len(missing) > 0 {
			logger.Warn("position entries without a matching gene, ignored",
				zap.Int("count", len(missing)))
		}
	}

	src, err := model.NewCollection(genes)
	if err != nil {
		return err
	}

	engineCfg := c.Cluster()
	res, err := cluster.New(engineCfg).Run(ctx, src)
	if err != nil {
		return err
	}

	mv := meanvar.New()
	for _, grp := range res.Partition.Groups {
		mv.Increment(float64(grp.Size()))
	}

	conn, err := sql.Open("sqlite", c.DB)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.DB, err)
	}
	defer conn.Close()

	if err := mydb.InitSchema(conn); err != nil {
		return err
	}

	meta := mydb.RunMeta{
		RunID:            uuid.NewString(),
		KmerSize:         engineCfg.K,
		CoarseThresholds: engineCfg.CoarseThresholds,
		MeanClusterSize:  mv.Mean.GetResult(),
		SizeVariance:     mv.Var.GetResult(),
	}
	if err := mydb.SaveRun(conn, meta, src, res); err != nil {
		return err
	}

	logger.Info("run saved",
		zap.String("run_id", meta.RunID),
		zap.String("db", c.DB),
		zap.Int("clusters", len(res.Partition.Groups)),
		zap.Int("merges", res.Merges),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Float64("mean_cluster_size", meta.MeanClusterSize))
	return nil
}
