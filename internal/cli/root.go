package cli

import (
	"fmt"
	"strings"

	"prioritize/internal/format"
	"prioritize/internal/logging"
	"prioritize/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type App struct {
	Format     string
	PrettyJSON bool

	v   *viper.Viper
	cfg store.Config
	log zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{v: store.NewViper(), log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:          "prioritize",
		Short:        "Prioritize! keeps a nested, ranked list of what matters",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive tree view
  prioritize

  # Scriptable commands
  prioritize add "Ship the release"
  prioritize ls --recursive

  # Rank the top level by answering "which matters more?"
  prioritize rank

  # Direct item lookup (shortcut for: prioritize show <item-id>)
  prioritize item-abcd1234
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive view.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.configure(cmd)
	}

	pf := cmd.PersistentFlags()
	pf.String("dir", "", "Workspace directory (default: nearest .prioritize, else ./.prioritize)")
	pf.String("backend", store.BackendFile, "Storage backend (file|sqlite|diskv)")
	pf.String("timeout", "10s", "Time limit for loading and saving")
	pf.String("log-level", "warn", "Log level (debug|info|warn|error|off)")
	pf.BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	pf.StringVar(&app.Format, "format", "json", "Output format (json|edn|text)")

	_ = app.v.BindPFlag(store.KeyDir, pf.Lookup("dir"))
	_ = app.v.BindPFlag(store.KeyBackend, pf.Lookup("backend"))
	_ = app.v.BindPFlag(store.KeyTimeout, pf.Lookup("timeout"))
	_ = app.v.BindPFlag(store.KeyLogLevel, pf.Lookup("log-level"))

	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newPathCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newRankCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

// configure resolves flags, PRIORITIZE_* env and the config file into app.cfg and sets up logging.
func (app *App) configure(cmd *cobra.Command) error {
	switch app.Format {
	case "", format.JSON, format.EDN, format.Text:
	default:
		return writeErr(cmd, fmt.Errorf("unknown format: %s (want json|edn|text)", app.Format))
	}
	cfg, err := store.LoadConfig(app.v)
	if err != nil {
		return writeErr(cmd, err)
	}
	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	app.log = logging.Component(log, "cli")
	app.log.Debug().Str("dir", cfg.Dir).Str("backend", cfg.Backend).Dur("timeout", cfg.Timeout).Msg("configured")
	return nil
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), describeError(err))
	return err
}
