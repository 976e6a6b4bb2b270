package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	fsw "github.com/corey/grammarbind/internal/adapters/fsnotify"
	"github.com/corey/grammarbind/internal/app"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the grammar sources into the native build output",
	Long:  "Runs the C compiler on the configured grammar sources even if a build already exists.",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild and reload whenever grammar sources change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runBuild(cmd *cobra.Command, args []string) error {
	b, root, err := newBinding()
	if err != nil {
		return err
	}
	out, err := b.Rebuild(root)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ built %s\n", out)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	b, root, err := newBinding()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	srcDir := b.Resolve(root).Paths.Include

	reloader := app.NewReloader(b, root)
	defer reloader.Close()
	reload := func(reason string) {
		mod, err := reloader.Reload()
		if err != nil {
			fmt.Fprintf(out, "%s✗ reload failed (%s):%s %v\n", colorYellow, reason, colorReset, err)
			return
		}
		fmt.Fprintf(out, "%s✓ reloaded%s %s (%d node kinds, node types: %t)\n",
			colorGreen, colorReset, mod.Path, mod.Language().NodeKindCount(), mod.HasNodeTypeInfo())
	}

	w, err := fsw.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer w.Stop()

	changes := make(chan string, 1)
	onChange := func(path string) {
		select {
		case changes <- path:
		default: // a reload is already queued
		}
	}
	if err := w.Watch(srcDir, onChange); err != nil {
		return fmt.Errorf("watch %s: %w", srcDir, err)
	}

	fmt.Fprintf(out, "⚡ watching %s\n", srcDir)
	reload("start")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	for {
		select {
		case path := <-changes:
			rel, _ := filepath.Rel(root, path)
			reload(rel)
		case <-sigCh:
			fmt.Fprintln(out, "\n⚡ stopped")
			return nil
		}
	}
}
