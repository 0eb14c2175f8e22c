// Package cmd implements the recents command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/recents/internal/config"
	"github.com/zjrosen/recents/internal/log"
	"github.com/zjrosen/recents/internal/paths"
	"github.com/zjrosen/recents/internal/recents/application"
	"github.com/zjrosen/recents/internal/recents/infrastructure"
	"github.com/zjrosen/recents/internal/tracing"
)

var version = "dev"

// shutdownTimeout bounds flushing traces on exit.
const shutdownTimeout = 5 * time.Second

// rootOptions holds flag values and the state built from them for one
// invocation.
type rootOptions struct {
	configPath string
	dataDir    string
	debug      bool
	logFile    string
	verbose    bool

	v        *viper.Viper
	cfg      config.Config
	stderr   io.Writer
	closeLog func()
	provider *tracing.Provider
	svc      *application.Service
	pumps    sync.WaitGroup
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{v: viper.New()}

	root := &cobra.Command{
		Use:   "recents",
		Short: "Keep track of recently used files",
		Long: `recents keeps a short, durable list of the files you used most recently.

The list holds at most 10 files, newest first. Files that no longer exist
are dropped when the list is read. The list is stored as recent_files.json
in the data directory.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: opts.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "",
		"config file (default: <user config dir>/recents/config.yaml)")
	flags.StringVar(&opts.dataDir, "data-dir", "",
		"directory holding recent_files.json (env: RECENTS_DATA_DIR)")
	flags.BoolVar(&opts.debug, "debug", false, "write a debug log (env: RECENTS_DEBUG)")
	flags.StringVar(&opts.logFile, "log-file", "", "debug log path (default: <data dir>/debug.log)")
	flags.BoolVar(&opts.verbose, "verbose", false,
		"report registry changes on stderr; with --debug also echo log lines")

	_ = opts.v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = opts.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = opts.v.BindPFlag("log_file", flags.Lookup("log-file"))

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newRemoveCmd(opts),
		newClearCmd(opts),
		newPruneCmd(opts),
		newOpenCmd(opts),
		newSaveCmd(opts),
		newConfigCmd(opts),
	)
	return root, opts
}

// setup loads configuration and starts the debug log. An invalid
// configuration is an error.
func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	return o.load(cmd, true)
}

// setupLenient is setup for the config commands: an invalid configuration
// is reported as a warning so it can still be inspected and repaired.
func (o *rootOptions) setupLenient(cmd *cobra.Command, _ []string) error {
	return o.load(cmd, false)
}

func (o *rootOptions) load(cmd *cobra.Command, strict bool) error {
	o.stderr = &lockedWriter{w: cmd.ErrOrStderr()}
	if o.configPath == "" {
		o.configPath = paths.DefaultConfigPath()
	}

	cfg, err := config.Load(o.v, o.configPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		if strict {
			return fmt.Errorf("invalid configuration: %w (fix it with 'recents config set')", err)
		}
		fmt.Fprintf(o.stderr, "warning: invalid configuration: %v\n", err)
	}
	o.cfg = cfg

	if cfg.Debug {
		if err := o.startLog(); err != nil {
			fmt.Fprintf(o.stderr, "warning: debug log disabled: %v\n", err)
		} else if o.verbose {
			o.echoLog(cmd.Context())
		}
	}

	log.Debug(log.CatCLI, "Command started", "command", cmd.CommandPath(), "config", o.configPath)
	return nil
}

func (o *rootOptions) startLog() error {
	logPath := o.cfg.LogFile
	if logPath == "" {
		dataDir, err := paths.ResolveDataDir(o.cfg.DataDir)
		if err != nil {
			return err
		}
		logPath = paths.DebugLogPath(dataDir)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	closeLog, err := log.Init(logPath)
	if err != nil {
		return err
	}
	log.SetMinLevel(log.ParseLevel(o.cfg.LogLevel))
	o.closeLog = closeLog
	return nil
}

// service builds the registry service on first use.
func (o *rootOptions) service() (*application.Service, error) {
	if o.svc != nil {
		return o.svc, nil
	}

	dataDir, err := paths.ResolveDataDir(o.cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}

	provider, err := tracing.NewProvider(o.cfg.Tracing.Provider(dataDir))
	if err != nil {
		return nil, fmt.Errorf("starting tracing: %w", err)
	}
	o.provider = provider

	store := infrastructure.NewDirStore(dataDir)
	o.svc = application.NewService(store, infrastructure.NewFileLocker(store.Path()),
		application.WithPersistCleanup(o.cfg.PersistCleanup),
		application.WithTracer(provider.Tracer()),
	)
	if o.verbose {
		o.reportChanges(o.svc.Subscribe(context.Background()))
	}
	log.Debug(log.CatCLI, "Service ready", "record", store.Path(), "tracing", provider.Enabled())
	return o.svc, nil
}

// close releases everything setup and service started.
func (o *rootOptions) close() {
	if o.svc != nil {
		o.svc.Close()
	}
	if o.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := o.provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Failed to flush traces", err)
		}
		cancel()
	}
	if o.closeLog != nil {
		o.closeLog()
	}
	o.pumps.Wait()
}

// errOut returns the shared stderr writer once setup has run.
func (o *rootOptions) errOut(cmd *cobra.Command) io.Writer {
	if o.stderr != nil {
		return o.stderr
	}
	return cmd.ErrOrStderr()
}

// Execute runs the root command
func Execute() error {
	return execute(context.Background(), os.Args[1:])
}

func execute(ctx context.Context, args []string) error {
	root, opts := newRootCmd()
	defer opts.close()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
