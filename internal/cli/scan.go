package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/pkg/deps"
	"github.com/depscope/depscope/pkg/errors"
	"github.com/depscope/depscope/pkg/resolve"
	"github.com/depscope/depscope/pkg/scan"
	"github.com/depscope/depscope/pkg/stats"
	"github.com/depscope/depscope/pkg/subproject"
)

// scanCommand creates the scan command.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		configPath string
		engineURL  string
		dynamic    bool
		ptt        bool
		changed    []string
		resolveAll bool
		noCache    bool
		jsonPath   string
		statsPath  string
	)

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Discover subprojects and resolve their dependencies",
		Long: `Scan walks a directory tree, groups manifests and lockfiles into
subprojects, and resolves each subproject into a dependency graph.

Lockfiles are parsed in-process where a parser exists. With an engine
configured, --dynamic allows resolution by building the project and
--path-to-transitivity recovers child relationships static parsing
cannot produce. With --changed, only subprojects relevant to the listed
files are resolved; the rest are reported as skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			if err := validateChangedFiles(changed); err != nil {
				return err
			}

			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if engineURL != "" {
				cfg.EngineURL = engineURL
			}
			if dynamic {
				cfg.AllowDynamic = true
			}
			if ptt {
				cfg.PathToTransitivity = true
			}

			return c.runScan(cmd.Context(), root, cfg, scanParams{
				changed:    changed,
				resolveAll: resolveAll,
				noCache:    noCache,
				jsonPath:   jsonPath,
				statsPath:  statsPath,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default .depscope.toml in the scan root)")
	cmd.Flags().StringVar(&engineURL, "engine", "", "base URL of the resolution engine")
	cmd.Flags().BoolVar(&dynamic, "dynamic", false, "allow dynamic resolution via the engine")
	cmd.Flags().BoolVar(&ptt, "path-to-transitivity", false, "use the engine to recover transitive relationships")
	cmd.Flags().StringSliceVar(&changed, "changed", nil, "changed files; restricts resolution to relevant subprojects")
	cmd.Flags().BoolVar(&resolveAll, "resolve-all", false, "resolve every subproject even with --changed")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the engine response cache")
	cmd.Flags().StringVarP(&jsonPath, "json", "j", "", "write the full scan result as JSON ('-' for stdout)")
	cmd.Flags().StringVar(&statsPath, "stats-out", "", "append scan telemetry to this file")

	return cmd
}

type scanParams struct {
	changed    []string
	resolveAll bool
	noCache    bool
	jsonPath   string
	statsPath  string
}

// validateChangedFiles rejects diff baselines carrying absolute or
// traversing paths before any of them reach the filter.
func validateChangedFiles(changed []string) error {
	for _, p := range changed {
		if err := errors.ValidateRelativePath(p); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "--changed entry %q", p)
		}
	}
	return nil
}

func (c *CLI) runScan(ctx context.Context, root string, cfg Config, params scanParams) error {
	logger := loggerFromContext(ctx)
	resolver, err := c.newResolver(cfg, params.noCache)
	if err != nil {
		return err
	}
	scanner := scan.New(
		scan.WithTargetLister(newFSTargets(root)),
		scan.WithResolver(resolver),
		scan.WithObserver(loggerObserver{logger}),
		scan.WithLogger(logger),
	)

	opts := scan.RunOptions{
		Resolve: resolve.Options{
			AllowDynamic:       cfg.AllowDynamic,
			PathToTransitivity: cfg.PathToTransitivity,
		},
		ResolveAll: params.resolveAll,
	}
	if len(params.changed) > 0 {
		opts.ChangedFiles = params.changed
		opts.Rules = defaultRules
		opts.CodeTargets = codeTargets(params.changed)
	}

	started := time.Now()
	prog := newProgress(logger)
	result, err := scanner.Run(ctx, opts)
	if err != nil {
		return err
	}
	duration := time.Since(started)

	total := len(result.Unresolved)
	for _, group := range result.Resolved {
		total += len(group)
	}
	prog.done(fmt.Sprintf("Scanned %d subprojects", total))

	printScanSummary(result)

	if err := c.recordStats(ctx, cfg, params.statsPath, result, started, duration); err != nil {
		printWarning("stats not recorded: %v", err)
	}

	if params.jsonPath != "" {
		return writeScanJSON(params.jsonPath, result)
	}
	return nil
}

// recordStats sends telemetry to every configured sink. Failures degrade
// to a warning; the scan result has already been produced.
func (c *CLI) recordStats(ctx context.Context, cfg Config, statsPath string, result *scan.Result, started time.Time, duration time.Duration) error {
	var sinks []stats.Sink
	if statsPath != "" {
		sinks = append(sinks, stats.NewFileSink(statsPath))
	} else if cfg.Stats.File != "" {
		sinks = append(sinks, stats.NewFileSink(cfg.Stats.File))
	}
	if cfg.Stats.MongoURI != "" {
		sink, err := stats.NewMongoSink(ctx, cfg.Stats.MongoURI, cfg.Stats.MongoDatabase, cfg.Stats.MongoCollection)
		if err != nil {
			return err
		}
		sinks = append(sinks, sink)
	}
	if len(sinks) == 0 {
		return nil
	}

	doc := stats.Collect(result, started, duration)
	for _, sink := range sinks {
		if err := sink.Record(ctx, doc); err != nil {
			return err
		}
		if err := sink.Close(ctx); err != nil {
			return err
		}
	}
	return nil
}

func printScanSummary(result *scan.Result) {
	ecosystems := make([]string, 0, len(result.Resolved))
	for eco := range result.Resolved {
		ecosystems = append(ecosystems, string(eco))
	}
	sort.Strings(ecosystems)

	for _, eco := range ecosystems {
		for _, r := range result.Resolved[deps.Ecosystem(eco)] {
			path := r.Source.DisplayPaths()[0]
			printSuccess("%s %s", eco, path)
			printDetail("%d dependencies via %s", r.Graph.Count(), r.Method)
			for _, err := range r.Errors {
				printWarning("%v", err)
			}
		}
	}

	for _, u := range result.Unresolved {
		path := u.Source.DisplayPaths()[0]
		switch u.Reason {
		case subproject.ReasonSkipped:
			printDetail("skipped %s", path)
		case subproject.ReasonUnsupported:
			printInfo("unsupported %s", path)
		case subproject.ReasonFailed:
			printError("failed %s", path)
			for _, err := range u.Errors {
				printDetail("%v", err)
			}
		}
	}

	if len(result.DependencyTargets) > 0 {
		printNewline()
		printKeyValue("targets", fmt.Sprintf("%d files consumed as dependency data", len(result.DependencyTargets)))
	}
}

// scanJSON is the serialized form of a scan result.
type scanJSON struct {
	Resolved          []resolvedJSON   `json:"resolved"`
	Unresolved        []unresolvedJSON `json:"unresolved"`
	DependencyTargets []string         `json:"dependency_targets"`
}

type resolvedJSON struct {
	SubprojectID string                 `json:"subproject_id"`
	RootDir      string                 `json:"root_dir"`
	Ecosystem    deps.Ecosystem         `json:"ecosystem"`
	Method       string                 `json:"resolution_method"`
	Errors       []string               `json:"errors,omitempty"`
	Dependencies []deps.FoundDependency `json:"dependencies"`
}

type unresolvedJSON struct {
	SubprojectID string   `json:"subproject_id"`
	RootDir      string   `json:"root_dir"`
	Reason       string   `json:"reason"`
	Errors       []string `json:"errors,omitempty"`
}

func writeScanJSON(path string, result *scan.Result) error {
	out := scanJSON{DependencyTargets: result.DependencyTargets}

	ecosystems := make([]string, 0, len(result.Resolved))
	for eco := range result.Resolved {
		ecosystems = append(ecosystems, string(eco))
	}
	sort.Strings(ecosystems)
	for _, eco := range ecosystems {
		for _, r := range result.Resolved[deps.Ecosystem(eco)] {
			entry := resolvedJSON{
				SubprojectID: r.ID(),
				RootDir:      r.RootDir,
				Ecosystem:    r.Ecosystem,
				Method:       string(r.Method),
				Errors:       errorStrings(r.Errors),
			}
			for d := range r.Graph.All() {
				entry.Dependencies = append(entry.Dependencies, d)
			}
			out.Resolved = append(out.Resolved, entry)
		}
	}
	for _, u := range result.Unresolved {
		out.Unresolved = append(out.Unresolved, unresolvedJSON{
			SubprojectID: u.ID(),
			RootDir:      u.RootDir,
			Reason:       string(u.Reason),
			Errors:       errorStrings(u.Errors),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	printFile(path)
	return nil
}

func errorStrings(errs []error) []string {
	var out []string
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

// loggerObserver reports per-subproject progress at debug level.
type loggerObserver struct {
	logger interface {
		Debug(msg any, keyvals ...any)
	}
}

func (o loggerObserver) OnProgress(completed, total int, label string) {
	if label == "" {
		return
	}
	o.logger.Debug("resolving subproject", "n", completed+1, "of", total, "source", label)
}
