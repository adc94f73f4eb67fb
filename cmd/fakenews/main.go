package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aarunima248/fake-news/internal/config"
)

var version = "dev"

var (
	cfgFile string
	noColor bool
)

// vp backs every command; initConfig wires it before the first RunE fires.
var vp = viper.New()

var rootCmd = &cobra.Command{
	Use:   "fakenews",
	Short: "Local fake news detection service",
	Long: `fakenews classifies news content as real or fake with a locally
loaded TF-IDF model and keeps a per-session history of every verdict.

Run "fakenews serve" to start the HTTP server with the browser UI, then use
"fakenews analyze" and friends against it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fakenews version %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.fakenews/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd, stopCmd, statusCmd, mcpCmd)
	rootCmd.AddCommand(analyzeCmd, exportCmd, statsCmd, clearCmd)
	rootCmd.AddCommand(correctionsCmd, configCmd, versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		vp.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		vp.AddConfigPath(filepath.Join(home, ".fakenews"))
		vp.SetConfigName("config")
		vp.SetConfigType("yaml")
	}

	vp.SetEnvPrefix("FAKENEWS")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()
	config.Bind(vp)

	// A missing config file is fine; defaults and env cover everything.
	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			printWarning("config file: %v", err)
		}
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(vp)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
