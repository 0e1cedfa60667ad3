package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"

	adminPatternsDir string
	userPatternsDir  string
	userID           string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "billscan",
	Short: "Utility bill extraction and property matching tool",
	Long: `Billscan extracts structured data (amount, IBAN, bill number, addresses)
from utility bill documents using vendor patterns, and matches the
extracted addresses against a landlord's registered properties.

Examples:
  billscan extract --file bill.txt --user u1
  billscan match --properties properties.csv --user u1 bill1.txt bill2.txt
  billscan patterns list --user u1
  billscan patterns validate`,
	Version: getVersionString(),

	// Errors go through the CLI error handler in main; cobra printing
	// them too would duplicate every message.
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&adminPatternsDir, "admin-patterns", "patterns/admin", "directory with admin-tier pattern files")
	rootCmd.PersistentFlags().StringVar(&userPatternsDir, "user-patterns", "patterns/users", "directory with per-user pattern subdirectories")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user id whose patterns participate")

	// Bind flags to viper
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("admin-patterns", rootCmd.PersistentFlags().Lookup("admin-patterns"))
	viper.BindPFlag("user-patterns", rootCmd.PersistentFlags().Lookup("user-patterns"))
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)

		// If a config file is specified, read it in.
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}

		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}

	// Read environment variables that match
	viper.SetEnvPrefix("BILLSCAN")
	viper.AutomaticEnv()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
