// Package cli implements the cvkinfo command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gogpu/cvk"
	"github.com/gogpu/cvk/config"
	"github.com/gogpu/cvk/probe"
)

// BuildInfo is set by main from linker flags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// app carries flag values and the collaborators commands run against.
type app struct {
	build BuildInfo

	cfgFile    string
	appName    string
	engineName string
	apiVersion string
	debug      bool
	logLevel   string
	format     string

	driver  cvk.Driver
	backend func() (probe.InstanceFactory, error)
	logger  *log.Logger
}

// Option configures the command tree.
type Option func(*app)

// WithDriver replaces the Vulkan driver used by the instance command.
func WithDriver(d cvk.Driver) Option {
	return func(a *app) { a.driver = d }
}

// WithBackend replaces the HAL backend used by the adapters command.
func WithBackend(f func() (probe.InstanceFactory, error)) Option {
	return func(a *app) { a.backend = f }
}

// NewRootCommand builds the cvkinfo command tree.
func NewRootCommand(build BuildInfo, opts ...Option) *cobra.Command {
	a := &app{
		build:   build,
		driver:  cvk.VulkanDriver(),
		backend: probe.Vulkan,
	}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "cvkinfo",
		Short: "Inspect the Vulkan driver through the cvk context",
		Long: `cvkinfo creates the process-wide Vulkan context the way an application
would and reports what the driver offers: API version, layers, extensions
and physical devices.

Settings come from flags, CVK_* environment variables and an optional
cvk.yaml in the working directory.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogger(cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./cvk.yaml)")
	pf.StringVar(&a.appName, "app-name", "", "application name reported to the driver")
	pf.StringVar(&a.engineName, "engine-name", "", "engine name reported to the driver")
	pf.StringVar(&a.apiVersion, "api-version", "", "requested API version (1.0 - 1.3)")
	pf.BoolVar(&a.debug, "debug", false, "enable validation layer and debug messenger")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newInstanceCommand(a),
		newAdaptersCommand(a),
		newVersionCommand(a),
	)
	return root
}

// setupLogger routes cvk logging through a charmbracelet logger.
func (a *app) setupLogger(w io.Writer) error {
	level, err := log.ParseLevel(a.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}
	a.logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "cvk",
		Level:           level,
	})
	cvk.SetLogger(slog.New(a.logger))
	return nil
}

// loadInfo merges the config file, environment and explicitly set flags.
func (a *app) loadInfo(cmd *cobra.Command) (cvk.ContextInfo, error) {
	l := config.NewLoader()
	if a.cfgFile != "" {
		l.WithConfigPath(a.cfgFile)
	}
	flags := cmd.Flags()
	if flags.Changed("app-name") {
		l.Set(config.KeyAppName, a.appName)
	}
	if flags.Changed("engine-name") {
		l.Set(config.KeyEngineName, a.engineName)
	}
	if flags.Changed("api-version") {
		l.Set(config.KeyVersion, a.apiVersion)
	}
	if flags.Changed("debug") {
		l.Set(config.KeyDebugging, a.debug)
	}
	info, err := l.Load()
	if err != nil {
		return cvk.ContextInfo{}, err
	}
	if used := l.ConfigFileUsed(); used != "" && a.logger != nil {
		a.logger.Debug("loaded config", "file", used)
	}
	return info, nil
}

// Execute runs cvkinfo with os.Args and returns the process exit code.
func Execute(build BuildInfo) int {
	if err := NewRootCommand(build).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cvkinfo: "+strings.TrimPrefix(err.Error(), "cvk: "))
		return 1
	}
	return 0
}
