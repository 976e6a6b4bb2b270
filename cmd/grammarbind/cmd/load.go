package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/corey/grammarbind/internal/adapters/treesitter"
	"github.com/corey/grammarbind/internal/app"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the native library and report what was found",
	Args:  cobra.NoArgs,
	RunE:  runLoad,
}

var nodeTypesNamed bool

var nodeTypesCmd = &cobra.Command{
	Use:   "node-types",
	Short: "List the grammar's node types",
	Args:  cobra.NoArgs,
	RunE:  runNodeTypes,
}

var parseCheck bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a file with the loaded grammar and print its syntax tree",
	Long:  "Parses a file and prints the tree as an S-expression. With --check, walks the tree against node-types.json instead.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	nodeTypesCmd.Flags().BoolVar(&nodeTypesNamed, "named", false, "only named node types")
	parseCmd.Flags().BoolVar(&parseCheck, "check", false, "check the tree against the grammar's node types")
}

// loadModule runs the full load sequence for the selected root.
func loadModule() (*app.Module, error) {
	b, root, err := newBinding()
	if err != nil {
		return nil, err
	}
	return b.Load(root)
}

func runLoad(cmd *cobra.Command, args []string) error {
	mod, err := loadModule()
	if err != nil {
		return err
	}
	defer mod.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s⚡ loaded %s%s\n", colorBold, mod.Name, colorReset)
	field(out, "Path", mod.Path)
	field(out, "Strategy", mod.Strategy)
	field(out, "Symbol", mod.Symbol)
	field(out, "Node kinds", mod.Language().NodeKindCount())
	field(out, "Fields", mod.Language().FieldCount())
	if mod.HasNodeTypeInfo() {
		field(out, "Node types", fmt.Sprintf("%s✓ %d attached%s", colorGreen, len(mod.NodeTypeInfo), colorReset))
	} else {
		field(out, "Node types", fmt.Sprintf("%s✗ not available%s", colorYellow, colorReset))
	}
	return nil
}

func runNodeTypes(cmd *cobra.Command, args []string) error {
	mod, err := loadModule()
	if err != nil {
		return err
	}
	defer mod.Close()

	out := cmd.OutOrStdout()
	if !mod.HasNodeTypeInfo() {
		fmt.Fprintln(out, "no metadata")
		return nil
	}

	types := mod.NodeTypeInfo
	if nodeTypesNamed {
		types = types.Named()
	}
	for _, t := range types {
		kind := "anon "
		if t.Named {
			kind = "named"
		}
		extra := ""
		switch {
		case t.Root:
			extra = " (root)"
		case t.Extra:
			extra = " (extra)"
		case len(t.Subtypes) > 0:
			extra = fmt.Sprintf(" (supertype of %d)", len(t.Subtypes))
		}
		fmt.Fprintf(out, "  %s%s%s  %s%s\n", colorGray, kind, colorReset, t.Type, extra)
	}
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	mod, err := loadModule()
	if err != nil {
		return err
	}
	defer mod.Close()

	parser, err := mod.NewParser()
	if err != nil {
		return err
	}
	defer parser.Close()

	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("parse %s: no tree produced", args[0])
	}
	defer tree.Close()

	root := tree.RootNode()
	out := cmd.OutOrStdout()
	if parseCheck {
		return reportCheck(out, args[0], treesitter.CheckTree(root, mod.NodeTypeInfo), mod.HasNodeTypeInfo())
	}
	fmt.Fprintln(out, root.ToSexp())
	if root.HasError() {
		return fmt.Errorf("%s: syntax errors present", args[0])
	}
	return nil
}

func reportCheck(out io.Writer, file string, result treesitter.WalkResult, haveTypes bool) error {
	total := 0
	for _, n := range result.Kinds {
		total += n
	}

	fmt.Fprintf(out, "%s⚡ %s%s  %d nodes, %d kinds\n", colorBold, file, colorReset, total, len(result.Kinds))
	if !haveTypes {
		fmt.Fprintf(out, "  %sno node types available, checking parse errors only%s\n", colorGray, colorReset)
	}
	for _, f := range result.Findings {
		fmt.Fprintf(out, "  %s✗%s %s\n", colorYellow, colorReset, f)
	}
	if len(result.Findings) > 0 {
		return fmt.Errorf("%s: %d findings", file, len(result.Findings))
	}
	fmt.Fprintf(out, "  %s✓ tree matches node types%s\n", colorGreen, colorReset)
	return nil
}
