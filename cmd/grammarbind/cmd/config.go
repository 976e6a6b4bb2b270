package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long:  "Shows the grammar config after defaults are applied. Nothing is loaded.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	b, root, err := newBinding()
	if err != nil {
		return err
	}
	cfg := b.Config()
	out := cmd.OutOrStdout()

	compiler := cfg.Build.Compiler
	if compiler == "" {
		compiler = "$CC or cc"
	}

	fmt.Fprintf(out, "%s⚡ grammarbind config%s\n", colorBold, colorReset)
	field(out, "Root", root)
	field(out, "Grammar", cfg.Grammar)
	field(out, "Symbol", cfg.SymbolName())
	field(out, "Prebuilt", cfg.PrebuiltTemplate)
	field(out, "Node types", cfg.NodeTypesPath)
	field(out, "Sources", strings.Join(cfg.Build.Sources, ", "))
	field(out, "Output", cfg.Build.Output)
	field(out, "Compiler", compiler)
	field(out, "Cache", cfg.Build.Cache)
	return nil
}
