package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"rhodes-todo/tui"
)

func newBoardCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the terminal board",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The board draws on the terminal, so logs only go to log_file.
			s, err := openSession(cmd, opts, true)
			if err != nil {
				return err
			}
			// The board persists after every change; save the load-time sweep first.
			if s.dirty {
				if err := s.save(cmd.Context()); err != nil {
					_ = s.close(cmd.Context())
					return err
				}
			}

			startup := ""
			if n := len(s.svc.Overdue(s.today)); n > 0 {
				startup = fmt.Sprintf("%d overdue order(s) on the board", n)
			}
			runErr := tui.Run(cmd.Context(), tui.Options{
				Service:   s.svc,
				Backend:   s.backend,
				Today:     s.today,
				GachaCost: s.cfg.GachaCost,
				Logger:    s.log,
				Status:    startup,
			})
			if err := s.close(cmd.Context()); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
}
