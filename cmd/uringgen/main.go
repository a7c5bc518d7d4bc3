// Command uringgen generates the liburing cgo bindings: it probes for the
// library, wraps the inline-only functions of the header, compiles and
// archives the wrappers and prints the link directives on stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/uringgen"
	"github.com/wippyai/uringgen/config"
	builderr "github.com/wippyai/uringgen/errors"
	"github.com/wippyai/uringgen/externalize"
	"github.com/wippyai/uringgen/header"
	"github.com/wippyai/uringgen/pipeline"
	"github.com/wippyai/uringgen/probe"
	"github.com/wippyai/uringgen/toolchain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd(toolchain.NewExecRunner()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// configuration flags and the keys they set
var flagKeys = []struct {
	flag, key, usage string
}{
	{"header", "HEADER", "C header to bind, relative to the source root"},
	{"out-dir", "OUT_DIR", "build output directory"},
	{"source-root", "SOURCE_ROOT", "directory of the consuming package"},
	{"library", "LIBRARY", "native shared library to link"},
	{"pkg-config-name", "PKG_CONFIG_NAME", "pkg-config package of the native library"},
	{"archive", "ARCHIVE", "name of the generated static archive"},
	{"suffix", "SUFFIX", "wrapper name suffix"},
	{"cc", "CC", "C compiler"},
	{"cpp", "CPP", "C preprocessor"},
	{"ar", "AR", "archiver"},
	{"cflags", "CFLAGS", "extra compiler flags, space separated"},
	{"search-path", "SEARCH_PATHS", "link search path (repeatable, replaces the system defaults)"},
	{"allow-function", "ALLOW_FUNCTIONS", "regular expression selecting the functions to bind"},
	{"glue-file", "GLUE_FILE", "name of the generated cgo file in the source root"},
	{"package", "GOPACKAGE", "Go package of the cgo file (default $GOPACKAGE)"},
	{"skip-probe", "SKIP_PROBE", "do not check for the native library with pkg-config"},
}

// cli holds what every command shares.
type cli struct {
	runner toolchain.Runner
}

// NewRootCmd builds the command tree. Every external tool is run through
// runner.
func NewRootCmd(runner toolchain.Runner) *cobra.Command {
	c := &cli{runner: runner}
	rootCmd := &cobra.Command{
		Use:   "uringgen",
		Short: "Generate cgo bindings for liburing",
		Long: "uringgen wraps the static inline functions of a C header in external functions,\n" +
			"archives them into a static library and prints the link directives for the build.",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
		},
		RunE: c.runGenerate,
	}

	flags := rootCmd.PersistentFlags()
	for _, f := range flagKeys {
		switch f.key {
		case "SEARCH_PATHS":
			flags.StringSlice(f.flag, nil, f.usage)
		case "SKIP_PROBE":
			flags.Bool(f.flag, false, f.usage)
		default:
			flags.String(f.flag, "", f.usage)
		}
	}
	flags.BoolP("verbose", "v", false, "Log every tool invocation")
	rootCmd.Flags().BoolP("interactive", "i", false, "Show progress in an interactive view")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the whole pipeline (default)",
		Args:  cobra.NoArgs,
		RunE:  c.runGenerate,
	}
	generateCmd.Flags().BoolP("interactive", "i", false, "Show progress in an interactive view")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the function table of the header without building",
		Args:  cobra.NoArgs,
		RunE:  c.runInspect,
	}

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that the native library is installed",
		Args:  cobra.NoArgs,
		RunE:  c.runProbe,
	}

	rootCmd.AddCommand(generateCmd, inspectCmd, probeCmd)
	return rootCmd
}

func setupLogging(verbose bool) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	pipeline.SetLogger(logger)
	toolchain.SetLogger(logger)
	header.SetLogger(logger.Named("header"))
}

// loadConfig layers defaults, the environment and the flags set on the
// command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	values := make(map[string]any)
	for _, f := range flagKeys {
		flag := cmd.Flags().Lookup(f.flag)
		if flag == nil || !flag.Changed {
			continue
		}
		switch flag.Value.Type() {
		case "stringSlice":
			values[f.key], _ = cmd.Flags().GetStringSlice(f.flag)
		case "bool":
			values[f.key], _ = cmd.Flags().GetBool(f.flag)
		default:
			values[f.key] = flag.Value.String()
		}
	}
	if err := cfg.FromMap(values); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *cli) runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	interactive, _ := cmd.Flags().GetBool("interactive")
	if interactive && term.IsTerminal(int(os.Stdout.Fd())) {
		return runInteractive(cmd.Context(), cfg, c.runner, cmd.OutOrStdout())
	}

	_, err = uringgen.Generate(cmd.Context(), cfg,
		pipeline.WithRunner(c.runner),
		pipeline.WithStdout(cmd.OutOrStdout()))
	return err
}

func (c *cli) runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// inspect writes nothing, any directory satisfies validation
	if cfg.OutDir == "" {
		cfg.OutDir = os.TempDir()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	var includeDirs []string
	if !cfg.SkipProbe {
		lib, err := probe.New(cfg.PkgConfig, c.runner).Probe(ctx, cfg.PkgConfigName)
		if err != nil {
			return err
		}
		includeDirs = lib.IncludeDirs
	}

	desc, err := header.NewIngestor(cfg, c.runner, includeDirs).Ingest(ctx, cfg.HeaderPath())
	if err != nil {
		return err
	}

	wrappers := make(map[string]string)
	src, xerr := externalize.New(cfg.WrapperSuffix).Externalize(desc, cfg.WrapperSourcePath())
	if src != nil {
		for _, w := range src.Wrappers {
			wrappers[w.Symbol] = w.Name
		}
	}
	var unsupported *builderr.UnsupportedFunctionsError
	if errors.As(xerr, &unsupported) {
		for _, fn := range unsupported.Functions {
			wrappers[fn.Symbol] = "unsupported: " + fn.Reason
		}
	}

	var data [][]string
	for _, fn := range desc.Functions() {
		wrapper := wrappers[fn.Name]
		if fn.Linkage == header.LinkageExternal {
			wrapper = "-"
		}
		data = append(data, []string{fn.Name, fn.Linkage.String(), wrapper, fn.Signature()})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"NAME", "LINKAGE", "WRAPPER", "SIGNATURE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	fmt.Fprintf(cmd.ErrOrStderr(), "%d functions, %d inline-only\n", desc.Len(), len(desc.InlineOnly()))
	return xerr
}

func (c *cli) runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lib, err := probe.New(cfg.PkgConfig, c.runner).Probe(cmd.Context(), cfg.PkgConfigName)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", lib.Name, lib.Version)
	fmt.Fprintf(out, "library dirs: %s\n", strings.Join(lib.LibDirs, " "))
	fmt.Fprintf(out, "include dirs: %s\n", strings.Join(lib.IncludeDirs, " "))
	return nil
}
