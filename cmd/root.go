// Package cmd is for command line interactions with the ggcluster
// application.
package cmd

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yumyai/ggcluster/config"
	"github.com/yumyai/ggcluster/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "ggcluster",
	Short: `Group the genes of a pangenome into clusters of corresponding genes.
Build a gene table from FASTA input, export it, and serve it over HTTP`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.InitLogger(logger.LevelFromEnv()); err != nil {
			return err
		}
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env found, using local environment")
		}
		return loadSettings()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "settings", "s", "", "path to a settings.yaml overriding the defaults")
	rootCmd.PersistentFlags().String("db", "", "path to the sqlite gene table")
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
}

// loadSettings layers viper: defaults, then the optional settings file,
// then GGCLUSTER_* environment variables, then flags (bound per command).
func loadSettings() error {
	config.SetDefaults()

	viper.SetEnvPrefix("ggcluster")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	return viper.ReadInConfig()
}
