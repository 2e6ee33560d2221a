package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	nodeURL string
	cfgFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "helios",
	Short: "Helios Protocol CLI",
	Long: `helios is the command-line interface for a Helios Protocol node.

It submits content claims, triggers verification runs, and inspects the
node's append-only claim ledger.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.helios")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if nodeURL == "" {
			nodeURL = viper.GetString("node_url")
		}
		if nodeURL == "" {
			nodeURL = "http://localhost:8080"
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.helios/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&nodeURL, "node", "", "Helios node URL (default http://localhost:8080)")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("helios " + version)
	},
}
