package db

import (
	"database/sql"
	"fmt"

	"github.com/yumyai/ggcluster/pkg/pangraph"
)

// ClusterRow is the list view of one cluster.
type ClusterRow struct {
	ClusterID          string `json:"cluster_id"`
	RepresentativeGene string `json:"representative_gene"`
	ExpectedLength     int    `json:"expected_length"`
	ParentCoarse       int    `json:"parent_coarse"`
	Size               int    `json:"size"`
}

// MemberRow is one gene of one cluster.
type MemberRow struct {
	GeneID   string `json:"gene_id"`
	GenomeID string `json:"genome_id"`
	ContigID string `json:"contig_id,omitempty"`
	Start    int    `json:"start,omitempty"`
	End      int    `json:"end,omitempty"`
	Strand   string `json:"strand,omitempty"`
	Length   int    `json:"length"`
}

// AdjacencyRow is one edge of the stored adjacency graph.
type AdjacencyRow struct {
	ClusterA string `json:"cluster_a"`
	ClusterB string `json:"cluster_b"`
	Weight   int    `json:"weight"`
}

func ListClusters(db *sql.DB) ([]*ClusterRow, error) {
	rows, err := db.Query(`
		SELECT gc.cluster_id, gc.representative_gene, gc.expected_length, gc.parent_coarse,
			COUNT(gm.gene_id)
		FROM gene_clusters gc
		LEFT JOIN gene_matches gm ON gm.cluster_id = gc.cluster_id
		GROUP BY gc.cluster_id
		ORDER BY gc.cluster_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ClusterRow
	for rows.Next() {
		var r ClusterRow
		if err := rows.Scan(&r.ClusterID, &r.RepresentativeGene, &r.ExpectedLength, &r.ParentCoarse, &r.Size); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// GetClusterMembers returns the genes of one cluster, gene id ascending.
// sql.ErrNoRows when the cluster does not exist.
func GetClusterMembers(db *sql.DB, clusterID string) ([]*MemberRow, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM gene_clusters WHERE cluster_id = ?`, clusterID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, sql.ErrNoRows
	}

	rows, err := db.Query(`
		SELECT gi.gene_id, gi.genome_id, gi.contig_id, gi.start_location, gi.end_location, gi.strand, gi.gene_length
		FROM gene_matches gm
		JOIN gene_info gi ON gi.gene_id = gm.gene_id
		WHERE gm.cluster_id = ?
		ORDER BY gi.gene_id`, clusterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*MemberRow
	for rows.Next() {
		var r MemberRow
		var contig, strand sql.NullString
		var start, end sql.NullInt64
		if err := rows.Scan(&r.GeneID, &r.GenomeID, &contig, &start, &end, &strand, &r.Length); err != nil {
			return nil, err
		}
		r.ContigID = contig.String
		r.Strand = strand.String
		r.Start = int(start.Int64)
		r.End = int(end.Int64)
		out = append(out, &r)
	}
	return out, rows.Err()
}

func LoadAdjacency(db *sql.DB) ([]*AdjacencyRow, error) {
	rows, err := db.Query(`
		SELECT cluster_a, cluster_b, weight FROM cluster_adjacency
		ORDER BY cluster_a, cluster_b`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*AdjacencyRow
	for rows.Next() {
		var r AdjacencyRow
		if err := rows.Scan(&r.ClusterA, &r.ClusterB, &r.Weight); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// LoadAdjacencyGraph rebuilds the in-memory adjacency graph from the
// stored edge list, for the regions query.
func LoadAdjacencyGraph(db *sql.DB) (*pangraph.Graph, error) {
	edges, err := LoadAdjacency(db)
	if err != nil {
		return nil, err
	}
	g := pangraph.New()
	for _, e := range edges {
		a, err := ParseClusterID(e.ClusterA)
		if err != nil {
			return nil, err
		}
		b, err := ParseClusterID(e.ClusterB)
		if err != nil {
			return nil, err
		}
		g.AddEdge(a, b, e.Weight)
	}
	return g, nil
}

// Matrix reconstructs the clusters x genomes count view from the stored
// memberships.
type Matrix struct {
	ClusterIDs []string
	GenomeIDs  []string
	Counts     [][]int
}

func LoadMatrix(db *sql.DB) (*Matrix, error) {
	m := &Matrix{}

	rows, err := db.Query(`SELECT genome_id FROM genome_info ORDER BY genome_id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		m.GenomeIDs = append(m.GenomeIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query(`SELECT cluster_id FROM gene_clusters ORDER BY cluster_id`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		m.ClusterIDs = append(m.ClusterIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	row := make(map[string]int, len(m.ClusterIDs))
	for i, id := range m.ClusterIDs {
		row[id] = i
	}
	col := make(map[string]int, len(m.GenomeIDs))
	for j, id := range m.GenomeIDs {
		col[id] = j
	}
	m.Counts = make([][]int, len(m.ClusterIDs))
	for i := range m.Counts {
		m.Counts[i] = make([]int, len(m.GenomeIDs))
	}

	rows, err = db.Query(`SELECT cluster_id, genome_id, COUNT(*) FROM gene_matches GROUP BY cluster_id, genome_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var clusterID, genomeID string
		var n int
		if err := rows.Scan(&clusterID, &genomeID, &n); err != nil {
			return nil, err
		}
		i, iok := row[clusterID]
		j, jok := col[genomeID]
		if !iok || !jok {
			return nil, fmt.Errorf("matrix: dangling membership %s/%s", clusterID, genomeID)
		}
		m.Counts[i][j] = n
	}
	return m, rows.Err()
}
