package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corey/grammarbind/internal/app"
)

var (
	flagRoot    string
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "grammarbind",
	Short: "Load tree-sitter grammar native libraries",
	Long:  "Resolve, build, and load a grammar package's native library and node-type metadata.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !flagVerbose {
			return nil
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		app.SetLogger(l)
		return nil
	},
	SilenceUsage: true,
}

// packageRoot returns --root, or the current directory.
func packageRoot() string {
	if flagRoot != "" {
		return flagRoot
	}
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// newBinding loads the package config and returns a Binding plus its root.
func newBinding() (*app.Binding, string, error) {
	root := packageRoot()
	path := flagConfig
	if path == "" {
		path = filepath.Join(root, app.ConfigFile)
	}
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return nil, "", err
	}
	return app.New(cfg), root, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "grammar package root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: <root>/grammarbind.hcl)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log resolution and build steps")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(nodeTypesCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}
