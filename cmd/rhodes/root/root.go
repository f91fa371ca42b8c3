package root

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rhodes-todo/ui"
)

const Version = "0.3.0"

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	statePath  string
	backend    string
	date       string
	verbose    bool
	now        func() time.Time
}

func Execute() {
	cmd := newRootCmd(&options{now: time.Now})
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rhodes",
		Short:         "Rhodes Island operation board: tasks, points and rewards",
		Long:          "rhodes tracks operation orders, pays points for completing them and spends points in the store.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/rhodes/config.toml)")
	flags.StringVar(&opts.statePath, "state", "", "State path, overrides state_path")
	flags.StringVar(&opts.backend, "backend", "", "Storage backend (file|sqlite|memory), overrides backend")
	flags.StringVar(&opts.date, "date", "", "Treat this YYYY-MM-DD as today")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug events to stderr")

	cmd.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newDoneCmd(opts),
		newSubCmd(opts),
		newEditCmd(opts),
		newRmCmd(opts),
		newDelayCmd(opts),
		newSweepCmd(opts),
		newClearCmd(opts),
		newStatusCmd(opts),
		newStatsCmd(opts),
		newScheduleCmd(opts),
		newAchievementCmd(opts),
		newTemplateCmd(opts),
		newCategoryCmd(opts),
		newShopCmd(opts),
		newGachaCmd(opts),
		newHistoryCmd(opts),
		newBgmCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newBoardCmd(opts),
	)
	return cmd
}
