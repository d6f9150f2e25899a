// Package db persists a clustering run as the sqlite gene table the
// ggtable viewer reads, and loads it back for the matrix, regions and
// serve commands.
package db

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id                TEXT PRIMARY KEY,
	created_at            TEXT NOT NULL,
	kmer_size             INTEGER NOT NULL,
	coarse_thresholds     TEXT NOT NULL,
	gene_count            INTEGER NOT NULL,
	genome_count          INTEGER NOT NULL,
	cluster_count         INTEGER NOT NULL,
	merge_count           INTEGER NOT NULL,
	mean_cluster_size     REAL NOT NULL,
	cluster_size_variance REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS genome_info (
	genome_id       TEXT PRIMARY KEY,
	genome_fullname TEXT NOT NULL,
	gene_count      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS gene_info (
	gene_id        TEXT PRIMARY KEY,
	genome_id      TEXT NOT NULL,
	contig_id      TEXT,
	start_location INTEGER,
	end_location   INTEGER,
	strand         TEXT,
	gene_length    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS gene_clusters (
	cluster_id          TEXT PRIMARY KEY,
	representative_gene TEXT NOT NULL,
	expected_length     INTEGER NOT NULL,
	parent_coarse       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS gene_matches (
	cluster_id TEXT NOT NULL,
	genome_id  TEXT NOT NULL,
	contig_id  TEXT,
	gene_id    TEXT NOT NULL,
	PRIMARY KEY (cluster_id, gene_id)
);

CREATE TABLE IF NOT EXISTS cluster_links (
	cluster_a TEXT NOT NULL,
	cluster_b TEXT NOT NULL,
	PRIMARY KEY (cluster_a, cluster_b)
);

CREATE TABLE IF NOT EXISTS cluster_adjacency (
	cluster_a TEXT NOT NULL,
	cluster_b TEXT NOT NULL,
	weight    INTEGER NOT NULL,
	PRIMARY KEY (cluster_a, cluster_b)
);

CREATE INDEX IF NOT EXISTS idx_gene_matches_genome ON gene_matches (genome_id);
CREATE INDEX IF NOT EXISTS idx_gene_info_genome ON gene_info (genome_id);
`

// InitSchema creates all tables of the gene-table layout.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// ClusterID formats the numeric group id the way the table names
// clusters.
func ClusterID(groupID int) string {
	return fmt.Sprintf("GC%05d", groupID)
}

// ParseClusterID inverts ClusterID.
func ParseClusterID(clusterID string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(clusterID, "GC%d", &id); err != nil {
		return 0, fmt.Errorf("bad cluster id %q: %w", clusterID, err)
	}
	return id, nil
}
