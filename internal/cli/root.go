// Package cli implements the todos command-line interface: the web server,
// configuration setup, and maintenance commands for stored sessions.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/internal/memory"
	"github.com/mesh-intelligence/todos/internal/paths"
	"github.com/mesh-intelligence/todos/internal/sqlite"
	"github.com/mesh-intelligence/todos/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks errors caused by bad input rather than the system.
var errUsage = errors.New("usage")

// rootFlags holds global flag values.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string
}

// runtime is the state shared by the commands of one root command.
type runtime struct {
	flags    rootFlags
	dirs     paths.Dirs
	settings settings
	logger   *slog.Logger
}

// NewRootCmd creates the top-level "todos" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "todos",
		Short: "A session-backed todo-list web application",
		Long: "todos serves named todo lists kept in per-browser sessions and\n" +
			"provides maintenance commands for the stored sessions.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&rt.flags.configDir, "config-dir", "", "configuration directory (default: per-user config dir)")
	root.PersistentFlags().StringVar(&rt.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.todos-db)")
	root.PersistentFlags().BoolVar(&rt.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&rt.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(rt))
	root.AddCommand(newServeCmd(rt))
	root.AddCommand(newSessionsCmd(rt))
	root.AddCommand(newShowCmd(rt))
	root.AddCommand(newPruneCmd(rt))
	root.AddCommand(newExportCmd(rt))
	root.AddCommand(newImportCmd(rt))

	return root
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Args[1:], os.Stderr))
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errUsage), errors.Is(err, types.ErrNotFound), errors.Is(err, types.ErrBackendUnknown):
		fmt.Fprintln(stderr, "todos:", err)
		return exitUserError
	default:
		fmt.Fprintln(stderr, "todos:", err)
		return exitSysError
	}
}

// setup resolves directories, loads config.yaml and builds the logger.
func (rt *runtime) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(rt.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	if rt.flags.logLevel != "" {
		v.Set(cfgKeyLogLevel, rt.flags.logLevel)
	}
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		v.Set(cfgKeyAddr, f.Value.String())
	}

	s, err := decodeSettings(v)
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	rt.dirs, err = paths.Resolve(configDir, rt.flags.dataDir, s.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	s.DataDir = rt.dirs.Data
	rt.settings = s

	rt.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: s.LogLevel}))
	return nil
}

// openStore creates the configured session store. The caller closes it.
func (rt *runtime) openStore() (types.SessionStore, error) {
	switch rt.settings.Backend {
	case types.BackendMemory:
		return memory.NewStore(), nil
	case types.BackendSQLite:
		b, err := sqlite.Open(rt.settings.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%q: %w", rt.settings.Backend, types.ErrBackendUnknown)
	}
}

// openDurableStore is openStore for commands that inspect sessions saved by
// a server process. A memory store starts empty in every process, so those
// commands require a durable backend.
func (rt *runtime) openDurableStore(command string) (types.SessionStore, error) {
	if rt.settings.Backend == types.BackendMemory {
		return nil, fmt.Errorf("%w: %s needs a durable backend; the memory backend keeps sessions only inside the serving process", errUsage, command)
	}
	return rt.openStore()
}

// openSQLite opens the SQLite store regardless of the configured backend;
// export and import work on the database file directly.
func (rt *runtime) openSQLite() (*sqlite.Backend, error) {
	b, err := sqlite.Open(rt.settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return b, nil
}
