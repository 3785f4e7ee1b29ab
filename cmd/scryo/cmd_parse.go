package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/QwilApp/scryo/ast"
	"github.com/QwilApp/scryo/config"
	"github.com/QwilApp/scryo/loader"
	"github.com/QwilApp/scryo/report"
	"github.com/QwilApp/scryo/runner"
)

// parseFlags holds flag values for the parse command.
type parseFlags struct {
	jsonOutput   bool
	pretty       bool
	scenarios    bool
	noInnerCalls bool
	strict       bool
	noColor      bool
	only         string
	configPath   string
	workers      int
}

func newParseCommand() *cobra.Command {
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse [paths...]",
		Short: "Extract commands, tests, hooks, and scenarios from spec files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "emit the report as JSON")
	cmd.Flags().BoolVar(&flags.pretty, "pretty", false, "indent JSON output")
	cmd.Flags().BoolVar(&flags.scenarios, "scenarios", false, "run the scenario-factory extension")
	cmd.Flags().BoolVar(&flags.noInnerCalls, "no-inner-calls", false, "skip commandsUsed/otherCalls side channels")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "exit 2 when any diagnostic is reported")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored console output")
	cmd.Flags().StringVar(&flags.only, "only", "", "restrict output to a comma-separated category list: added,used,tests,hooks")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultFileName+" if present)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "analysis concurrency (default GOMAXPROCS)")

	return cmd
}

func runParse(cmd *cobra.Command, flags *parseFlags, args []string) error {
	cfgPath := flags.configPath
	explicit := cfgPath != ""
	if !explicit {
		cfgPath = config.DefaultFileName
	}
	cfg, err := config.Load(cfgPath, explicit)
	if err != nil {
		return err
	}

	analyzer, err := buildAnalyzer(cfg, flags)
	if err != nil {
		return err
	}

	exts := append([]string(nil), loader.DefaultExtensions...)
	exts = append(exts, cfg.Extensions...)
	files, err := loader.Discover(args, exts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no analyzable files under %v", args)
	}

	run := runner.NewRunner(analyzer, runner.WithWorkers(flags.workers))
	rep, err := run.Run(cmd.Context(), files)
	if err != nil {
		return err
	}

	if flags.jsonOutput {
		if err := report.WriteJSON(os.Stdout, rep, flags.pretty); err != nil {
			return err
		}
	} else {
		console := report.NewConsole(os.Stdout)
		if flags.noColor {
			console = report.NewConsole(os.Stdout, report.WithColor(false))
		}
		if err := console.Render(rep); err != nil {
			return err
		}
	}

	if flags.strict && rep.Diagnostics() > 0 {
		// RunE errors exit 1; diagnostics under --strict get their own
		// exit code so CI can tell "broken run" from "dirty suite".
		os.Exit(2)
	}
	return nil
}

// buildAnalyzer merges config-file toggles with command-line overrides.
func buildAnalyzer(cfg *config.Config, flags *parseFlags) (*ast.Analyzer, error) {
	added, used, tests, hooks := cfg.CategoryToggles()
	if flags.only != "" {
		var err error
		added, used, tests, hooks, err = parseOnly(flags.only)
		if err != nil {
			return nil, err
		}
	}

	opts := []ast.AnalyzerOption{
		ast.WithCategories(added, used, tests, hooks),
		ast.WithInnerCalls(cfg.InnerCallsEnabled() && !flags.noInnerCalls),
		ast.WithScenarios(cfg.Scenarios || flags.scenarios),
	}
	if cfg.MaxFileSize > 0 {
		opts = append(opts, ast.WithMaxFileSize(cfg.MaxFileSize))
	}
	return ast.NewAnalyzer(opts...), nil
}

// parseOnly turns the --only list into category toggles. Naming a list
// turns everything else off, overriding the config file.
func parseOnly(list string) (added, used, tests, hooks bool, err error) {
	for _, name := range strings.Split(list, ",") {
		switch strings.TrimSpace(name) {
		case "added":
			added = true
		case "used":
			used = true
		case "tests":
			tests = true
		case "hooks":
			hooks = true
		case "":
		default:
			return false, false, false, false,
				fmt.Errorf("unknown category %q in --only (want added, used, tests, hooks)", name)
		}
	}
	return added, used, tests, hooks, nil
}
