package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "canlens",
	Short: "Canlens — CAN trace log classifier",
	Long: `Canlens classifies the lines of automotive CAN trace logs against a
configurable rule set and writes two synchronized reports: a plain-text
log and a navigable HTML view with match/mismatch highlighting.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.canlens.yaml)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".canlens")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("canlens")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}
