package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yumyai/ggcluster/pkg/cluster"
	"github.com/yumyai/ggcluster/pkg/model"
)

// RunMeta is the bookkeeping row of one build.
type RunMeta struct {
	RunID            string // uuid, minted by the build command
	KmerSize         int
	CoarseThresholds []float64
	MeanClusterSize  float64
	SizeVariance     float64
}

// SaveRun writes the whole result in one transaction: run row, genomes,
// genes, clusters, memberships, paralogue links and the adjacency edge
// list.
func SaveRun(db *sql.DB, meta RunMeta, src *model.Collection, res *cluster.Result) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	thresholds := make([]string, len(meta.CoarseThresholds))
	for i, t := range meta.CoarseThresholds {
		thresholds[i] = strconv.FormatFloat(t, 'f', -1, 64)
	}

	_, err = tx.Exec(`
		INSERT INTO runs (run_id, created_at, kmer_size, coarse_thresholds,
			gene_count, genome_count, cluster_count, merge_count,
			mean_cluster_size, cluster_size_variance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.RunID, time.Now().UTC().Format(time.RFC3339),
		meta.KmerSize, strings.Join(thresholds, ","),
		len(src.Genes()), len(src.Genomes()), len(res.Partition.Groups),
		res.Merges, meta.MeanClusterSize, meta.SizeVariance)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, genome := range src.Genomes() {
		_, err = tx.Exec(`INSERT INTO genome_info (genome_id, genome_fullname, gene_count) VALUES (?, ?, ?)`,
			genome.GenomeID, genome.GenomeID, len(genome.Genes))
		if err != nil {
			return fmt.Errorf("insert genome %s: %w", genome.GenomeID, err)
		}
	}

	geneStmt, err := tx.Prepare(`
		INSERT INTO gene_info (gene_id, genome_id, contig_id, start_location, end_location, strand, gene_length)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare gene_info: %w", err)
	}
	defer geneStmt.Close()

	for _, g := range src.Genes() {
		contig, strand := sql.NullString{}, sql.NullString{}
		start, end := sql.NullInt64{}, sql.NullInt64{}
		if g.Region != nil {
			contig = sql.NullString{String: g.Region.ContigID, Valid: true}
			start = sql.NullInt64{Int64: int64(g.Region.Start), Valid: true}
			end = sql.NullInt64{Int64: int64(g.Region.End), Valid: true}
			strand = sql.NullString{String: strandSymbol(g.Region.Strand), Valid: true}
		}
		if _, err = geneStmt.Exec(g.GeneID, g.GenomeID, contig, start, end, strand, g.Length()); err != nil {
			return fmt.Errorf("insert gene %s: %w", g.GeneID, err)
		}
	}

	matchStmt, err := tx.Prepare(`
		INSERT INTO gene_matches (cluster_id, genome_id, contig_id, gene_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare gene_matches: %w", err)
	}
	defer matchStmt.Close()

	for _, grp := range res.Partition.Groups {
		clusterID := ClusterID(grp.GroupID)

		expected := 0
		if rep, ok := src.Gene(grp.Representative); ok {
			expected = rep.Length()
		}
		_, err = tx.Exec(`
			INSERT INTO gene_clusters (cluster_id, representative_gene, expected_length, parent_coarse)
			VALUES (?, ?, ?, ?)`,
			clusterID, grp.Representative, expected, grp.ParentCoarse)
		if err != nil {
			return fmt.Errorf("insert cluster %s: %w", clusterID, err)
		}

		for _, geneID := range grp.GeneIDs {
			gene, ok := src.Gene(geneID)
			if !ok {
				return fmt.Errorf("cluster %s references unknown gene %s", clusterID, geneID)
			}
			contig := sql.NullString{}
			if gene.Region != nil {
				contig = sql.NullString{String: gene.Region.ContigID, Valid: true}
			}
			if _, err = matchStmt.Exec(clusterID, gene.GenomeID, contig, geneID); err != nil {
				return fmt.Errorf("insert match %s/%s: %w", clusterID, geneID, err)
			}
		}

		for _, link := range grp.Links {
			// Store each link once, low id first.
			if link <= grp.GroupID {
				continue
			}
			_, err = tx.Exec(`INSERT INTO cluster_links (cluster_a, cluster_b) VALUES (?, ?)`,
				clusterID, ClusterID(link))
			if err != nil {
				return fmt.Errorf("insert link %d-%d: %w", grp.GroupID, link, err)
			}
		}
	}

	for _, e := range res.Adjacency.Edges() {
		_, err = tx.Exec(`INSERT INTO cluster_adjacency (cluster_a, cluster_b, weight) VALUES (?, ?, ?)`,
			ClusterID(e.A), ClusterID(e.B), e.Weight)
		if err != nil {
			return fmt.Errorf("insert adjacency %d-%d: %w", e.A, e.B, err)
		}
	}

	return tx.Commit()
}

func strandSymbol(s model.Strand) string {
	if s == model.Reverse {
		return "-"
	}
	return "+"
}
