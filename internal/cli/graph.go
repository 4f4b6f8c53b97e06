package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/depgraph"
	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/resolve"
	"github.com/depscope/depscope/pkg/scan"
	"github.com/depscope/depscope/pkg/subproject"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		configPath string
		format     string
		output     string
		source     string
		pick       bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "graph [root]",
		Short: "Render the dependency graph of one subproject",
		Long: `Graph scans a directory tree, resolves its subprojects, and renders the
dependency graph of one of them.

Formats: tree (text), dot (graphviz source), svg, json.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if err := errors.ValidateOutputFormat(format); err != nil {
				return err
			}

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}

			resolved, err := c.resolveAll(cmd.Context(), root, cfg, noCache)
			if err != nil {
				return err
			}
			if len(resolved) == 0 {
				printInfo("No resolvable subprojects under %s", root)
				return nil
			}

			chosen, err := chooseSubproject(resolved, source, pick)
			if err != nil {
				return err
			}
			if chosen == nil {
				return nil
			}
			return renderGraph(cmd.Context(), *chosen, format, output)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default .depscope.toml in the scan root)")
	cmd.Flags().StringVarP(&format, "format", "f", "tree", "output format: tree, dot, svg, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout; required for svg)")
	cmd.Flags().StringVar(&source, "subproject", "", "pick the subproject whose source path contains this string")
	cmd.Flags().BoolVar(&pick, "select", false, "pick the subproject interactively")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the engine response cache")

	return cmd
}

// resolveAll runs a full scan and returns the resolved subprojects in
// deterministic order.
func (c *CLI) resolveAll(ctx context.Context, root string, cfg Config, noCache bool) ([]subproject.Resolved, error) {
	resolver, err := c.newResolver(cfg, noCache)
	if err != nil {
		return nil, err
	}
	scanner := scan.New(
		scan.WithTargetLister(newFSTargets(root)),
		scan.WithResolver(resolver),
		scan.WithLogger(c.Logger),
	)
	result, err := scanner.Run(ctx, scan.RunOptions{
		Resolve: resolve.Options{
			AllowDynamic:       cfg.AllowDynamic,
			PathToTransitivity: cfg.PathToTransitivity,
		},
	})
	if err != nil {
		return nil, err
	}

	ecosystems := make([]string, 0, len(result.Resolved))
	for eco := range result.Resolved {
		ecosystems = append(ecosystems, string(eco))
	}
	sort.Strings(ecosystems)

	var resolved []subproject.Resolved
	for _, eco := range ecosystems {
		resolved = append(resolved, result.Resolved[deps.Ecosystem(eco)]...)
	}
	return resolved, nil
}

// chooseSubproject picks the subproject to render: by path filter, by
// interactive selection, or the first one. A nil result with nil error
// means the user backed out of the picker.
func chooseSubproject(resolved []subproject.Resolved, source string, pick bool) (*subproject.Resolved, error) {
	if source != "" {
		for i, r := range resolved {
			for _, p := range r.Source.DisplayPaths() {
				if strings.Contains(p, source) {
					return &resolved[i], nil
				}
			}
		}
		return nil, errors.New(errors.ErrCodeNotFound, "no resolved subproject matches %q", source)
	}

	if pick && len(resolved) > 1 {
		model := newSubprojectListModel(resolved)
		final, err := tea.NewProgram(model).Run()
		if err != nil {
			return nil, err
		}
		m := final.(subprojectListModel)
		return m.selected, nil
	}

	return &resolved[0], nil
}

func renderGraph(ctx context.Context, r subproject.Resolved, format, output string) error {
	switch format {
	case "tree":
		out, cleanup, err := openOutput(output)
		if err != nil {
			return err
		}
		defer cleanup()
		fmt.Fprintf(out, "%s (%s, %s)\n", r.Source.DisplayPaths()[0], r.Ecosystem, r.Method)
		if missing := r.Graph.WriteTree(out); len(missing) > 0 {
			printWarning("%d children reference keys absent from the graph", len(missing))
		}
		return nil

	case "dot":
		out, cleanup, err := openOutput(output)
		if err != nil {
			return err
		}
		defer cleanup()
		_, err = fmt.Fprint(out, r.Graph.ToDOT())
		return err

	case "svg":
		if output == "" {
			return errors.New(errors.ErrCodeInvalidInput, "svg output requires --output")
		}
		sp := newSpinner("Rendering graph...")
		sp.Start()
		data, err := depgraph.RenderSVG(ctx, r.Graph.ToDOT())
		sp.Stop()
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return err
		}
		printSuccess("Rendered %d dependencies", r.Graph.Count())
		printFile(output)
		return nil

	case "json":
		out, cleanup, err := openOutput(output)
		if err != nil {
			return err
		}
		defer cleanup()
		var entries []deps.FoundDependency
		for d := range r.Graph.All() {
			entries = append(entries, d)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	return nil
}

// openOutput returns the writer for a command's output flag, stdout when
// the flag is empty.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() {
		f.Close()
		printFile(path)
	}, nil
}
