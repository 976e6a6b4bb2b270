package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/grammarbind/internal/domain/binding"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show which strategy and paths a load would use",
	Long:  "Prints the execution environment, the selected acquisition strategy, and the candidate paths. Loads nothing.",
	Args:  cobra.NoArgs,
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	b, root, err := newBinding()
	if err != nil {
		return err
	}
	res := b.Resolve(root)
	p := res.Paths
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s⚡ grammarbind resolve%s\n", colorBold, colorReset)
	field(out, "Root", p.Root)
	field(out, "Platform", res.Env.PlatformArch())
	field(out, "Runtime", res.Env.Runtime())
	field(out, "Versions", formatVersions(res.Env.Versions))
	field(out, "Strategy", res.Strategy.Kind())

	switch s := res.Strategy.(type) {
	case binding.StaticPrebuiltLookup:
		field(out, "Template", s.Template)
		fmt.Fprintf(out, "\n  %s %s\n", mark(p.Prebuilt), p.Prebuilt)
	case binding.DynamicNativeBuild:
		fmt.Fprintln(out, "\n  Search order:")
		fmt.Fprintf(out, "  %s %s\n", mark(p.BuildRelease), p.BuildRelease)
		fmt.Fprintf(out, "  %s %s\n", mark(p.BuildDebug), p.BuildDebug)
		fmt.Fprintf(out, "  %s %s\n", mark(p.Prebuilds), p.Prebuilds)
		for _, src := range p.Sources {
			fmt.Fprintf(out, "  %s %s (compile)\n", mark(src), src)
		}
	}
	fmt.Fprintf(out, "\n  %s %s (node types)\n", mark(p.NodeTypes), p.NodeTypes)
	return nil
}

func formatVersions(v map[string]string) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + v[k]
	}
	return strings.Join(parts, " ")
}
