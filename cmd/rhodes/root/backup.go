package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rhodes-todo/ui"
)

func newExportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a JSON backup to file (or stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				data, err := s.svc.Export()
				if err != nil {
					return err
				}
				if len(args) == 0 {
					_, err := cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(args[0], append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("write backup: %w", err)
				}
				s.printf("%s %s\n", ui.Good.Render("Exported to"), args[0])
				return nil
			})
		},
	}
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore slots from a JSON backup",
		Args:  exactArgs(1, "file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read backup: %w", err)
			}
			return withSession(cmd, opts, func(s *session) error {
				if err := s.svc.Import(data); err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s %s\n", ui.Good.Render("Imported"), args[0], ui.LabelValue("balance", s.svc.Points()))
				// Imported tasks may already be past due.
				if sweep := s.svc.SweepOverdue(s.today); len(sweep.Penalized) > 0 {
					s.printf("%s %d overdue order(s) penalized %s\n", ui.Bad.Render(ui.IconPenalty), len(sweep.Penalized), ui.Delta(sweep.Delta))
				}
				s.printEffects(0, s.svc.EvaluateAchievements())
				return nil
			})
		},
	}
}
