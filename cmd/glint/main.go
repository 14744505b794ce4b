package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/glint/internal/cache"
	"github.com/panbanda/glint/internal/output"
	"github.com/panbanda/glint/pkg/config"
	"github.com/panbanda/glint/pkg/engine"
	"github.com/panbanda/glint/pkg/language"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "glint",
		Usage:    "Multi-language source-code intelligence",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `Glint detects languages, finds likely syntax errors, measures complexity
and maintainability, highlights and formats source code.

Supports: JavaScript, TypeScript, Python, Java, C++, HTML, CSS, PHP, Ruby,
Go, Rust, SQL, JSON, Markdown, YAML, Bash`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"GLINT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon (default from config)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Enable pprof profiling and write to specified prefix (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)",
			},
		},
		Before: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				cpuFile, err := os.Create(pprofPrefix + ".cpu.pprof")
				if err != nil {
					return fmt.Errorf("failed to create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(cpuFile); err != nil {
					cpuFile.Close()
					return fmt.Errorf("failed to start CPU profile: %w", err)
				}
				c.App.Metadata["pprofCPU"] = cpuFile
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				pprof.StopCPUProfile()
				if cpuFile, ok := c.App.Metadata["pprofCPU"].(*os.File); ok {
					cpuFile.Close()
					color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
				}

				memFile, err := os.Create(pprofPrefix + ".mem.pprof")
				if err != nil {
					return fmt.Errorf("failed to create memory profile: %w", err)
				}
				defer memFile.Close()

				runtime.GC()
				if err := pprof.WriteHeapProfile(memFile); err != nil {
					return fmt.Errorf("failed to write memory profile: %w", err)
				}
				color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
			}
			return nil
		},
		Commands: []*cli.Command{
			detectCmd(),
			highlightCmd(),
			checkCmd(),
			metricsCmd(),
			fmtCmd(),
			validateCmd(),
			watchCmd(),
			mcpCmd(),
			configCmd(),
			cacheCmd(),
		},
	}
}

// exitCode maps an error to the process exit status, honoring cli.Exit.
func exitCode(err error) int {
	if coder, ok := err.(cli.ExitCoder); ok && coder.ExitCode() != 0 {
		return coder.ExitCode()
	}
	return 1
}

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig reads --config, or the config found in the working
// directory, and validates it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	if c.Bool("no-color") {
		cfg.Output.Color = false
	}
	return cfg, nil
}

// newFormatter builds the output formatter from the global flags, falling
// back to the configured format.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	name := c.String("format")
	if name == "" {
		name = cfg.Output.Format
	}
	return output.NewFormatter(output.ParseFormat(name), c.String("output"), cfg.Output.Color && !color.NoColor)
}

func openCache(c *cli.Context, cfg *config.Config) (*cache.Cache, error) {
	return cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled && !c.Bool("no-cache"))
}

// readSource reads a file, or stdin when path is "-".
func readSource(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// sourceArgs returns the positional file arguments, or stdin when there
// are none.
func sourceArgs(c *cli.Context) []string {
	if c.Args().Len() == 0 {
		return []string{"-"}
	}
	return c.Args().Slice()
}

// languageFor resolves the --language flag, or detects the language from
// the file name and content.
func languageFor(c *cli.Context, e *engine.Engine, path, code string) language.Tag {
	if name := c.String("language"); name != "" {
		return e.Resolve(language.Tag(name), code)
	}
	name := path
	if path == "-" {
		name = ""
	}
	return e.Resolve(e.DetectLanguage(name, code), code)
}

var languageFlag = &cli.StringFlag{
	Name:    "language",
	Aliases: []string{"l"},
	Usage:   "Language tag or alias; detected from the file name and content when empty",
}

func verbosef(cfg *config.Config, format string, args ...any) {
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, strings.TrimSuffix(format, "\n")+"\n", args...)
	}
}
