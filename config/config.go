// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"github.com/spf13/viper"

	"github.com/yumyai/ggcluster/pkg/cluster"
)

// CoarseConfig are settings for the first, representative-based pass.
type CoarseConfig struct {
	// k-mer size used for counting vectors
	KmerSize int `mapstructure:"kmer-size"`

	// cosine thresholds applied rung by rung, loosest first
	Thresholds []float64 `mapstructure:"thresholds"`
}

// RefineConfig are settings for the similarity graph and clique split.
type RefineConfig struct {
	// minimum cosine similarity for the sequence signal
	SeqMin float64 `mapstructure:"seq-min"`

	// minimum shared-neighbour ratio for the gene-order signal
	NeighborMin float64 `mapstructure:"neighbor-min"`

	// minimum short/long length ratio
	LengthMin float64 `mapstructure:"length-min"`

	// how many genes up- and downstream count as the neighbourhood
	Vicinity int `mapstructure:"vicinity"`

	// weights of the three signals in the edge score
	WeightSeq      float64 `mapstructure:"weight-seq"`
	WeightNeighbor float64 `mapstructure:"weight-neighbor"`
	WeightLength   float64 `mapstructure:"weight-length"`
}

// PostConfig are settings for the passes after the clique split.
type PostConfig struct {
	// cosine threshold for linking paralogues inside a coarse lineage
	ParalogueMin float64 `mapstructure:"paralogue-min"`

	// how many shared adjacent groups two groups need before the
	// merge pass considers folding them
	MergeMinShared int `mapstructure:"merge-min-shared"`
}

// Config is the root-level settings struct and is a mix of settings
// available in settings.yaml and those available from the command line.
type Config struct {
	// path to the sqlite database results are written to and read from
	DB string `mapstructure:"db"`

	// number of worker goroutines; 0 means one per CPU
	Workers int `mapstructure:"workers"`

	Coarse CoarseConfig `mapstructure:"coarse"`
	Refine RefineConfig `mapstructure:"refine"`
	Post   PostConfig   `mapstructure:"post"`
}

// SetDefaults registers the fallback values on viper. Flags and a
// settings file override these.
func SetDefaults() {
	viper.SetDefault("db", "./data/gene_table.db")
	viper.SetDefault("workers", 0)

	viper.SetDefault("coarse.kmer-size", 8)
	viper.SetDefault("coarse.thresholds", []float64{0.5, 0.7, 0.9})

	viper.SetDefault("refine.seq-min", 0.6)
	viper.SetDefault("refine.neighbor-min", 0.3)
	viper.SetDefault("refine.length-min", 0.5)
	viper.SetDefault("refine.vicinity", 5)
	viper.SetDefault("refine.weight-seq", 0.5)
	viper.SetDefault("refine.weight-neighbor", 0.3)
	viper.SetDefault("refine.weight-length", 0.2)

	viper.SetDefault("post.paralogue-min", 0.8)
	viper.SetDefault("post.merge-min-shared", 2)
}

// NewConfig returns a new Config struct populated by Viper settings
// (either from the local settings.yaml) and/or command line arguments.
func NewConfig() (Config, error) {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Cluster maps the settings onto the engine's parameter surface. The
// engine validates; no checking is duplicated here.
func (c Config) Cluster() cluster.Config {
	return cluster.Config{
		K:                c.Coarse.KmerSize,
		CoarseThresholds: c.Coarse.Thresholds,
		SeqMin:           c.Refine.SeqMin,
		NeighborMin:      c.Refine.NeighborMin,
		LengthMin:        c.Refine.LengthMin,
		Vicinity:         c.Refine.Vicinity,
		WeightSeq:        c.Refine.WeightSeq,
		WeightNeighbor:   c.Refine.WeightNeighbor,
		WeightLength:     c.Refine.WeightLength,
		ParalogueMin:     c.Post.ParalogueMin,
		MergeMinShared:   c.Post.MergeMinShared,
		Workers:          c.Workers,
	}
}
