package root

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rhodes-todo/app"
	"rhodes-todo/ui"
)

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show points, achievements and today's board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				s.printf("%s\n", ui.Heading(ui.IconOrder, "Rhodes Island Terminal"))
				s.printf("%s\n", ui.LabelValue("Date", s.today))
				s.printf("%s\n", ui.LabelValue("Balance", ui.Gold.Render(fmt.Sprintf("%s%d", ui.IconPoints, s.svc.Points()))))
				s.printf("%s\n", ui.LabelValue("Lifetime earned", s.svc.TotalEarnedPoints()))

				open, overdue := 0, len(s.svc.Overdue(s.today))
				for _, t := range s.svc.FilterTasks(app.FilterToday, s.today) {
					if !t.Completed {
						open++
					}
				}
				s.printf("%s\n", ui.LabelValue("Due today", open))
				if overdue > 0 {
					s.printf("%s\n", ui.LabelValue("Overdue", ui.Bad.Render(strconv.Itoa(overdue))))
				}
				s.printf("\n%s\n", ui.H2.Render(ui.IconTrophy+" Achievements"))
				printAchievements(s)
				return nil
			})
		},
	}
}

func printAchievements(s *session) {
	for _, a := range s.svc.Achievements() {
		mark := ui.Muted.Render(ui.IconOpen)
		title := ui.Muted.Render(a.Title)
		if a.Unlocked {
			mark = ui.Gold.Render(ui.IconTrophy)
			title = a.Title
		}
		s.printf("  %s %s %s %s\n", mark, title, ui.Muted.Render(fmt.Sprintf("(%d)", a.TargetPoints)), ui.Muted.Render(shortID(a.ID)))
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.ParseStatsPeriod(period)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(s *session) error {
				st := s.svc.Stats(p, opts.now())
				s.printf("%s\n", ui.Heading("", "Statistics "+string(p)))
				s.printf("%s\n", ui.LabelValue("Orders", st.Total))
				s.printf("%s\n", ui.LabelValue("Completed", st.Completed))
				s.printf("%s\n", ui.LabelValue("Rate", fmt.Sprintf("%d%%", st.Rate)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&period, "period", "p", string(app.PeriodWeek), "week|month|year")
	return cmd
}

func newScheduleCmd(opts *options) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show the orders due over the next days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				s.printf("%s\n", ui.Heading("", "Schedule"))
				for _, day := range s.svc.Upcoming(s.today, days) {
					s.printf("%s %s\n", ui.H2.Render(string(day.Date)), ui.Muted.Render(day.Date.Time().Weekday().String()))
					if len(day.Tasks) == 0 {
						s.printf("  %s\n", ui.Muted.Render("-"))
					}
					printTasks(s, day.Tasks, true)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&days, "days", "n", 3, "Number of days to show")
	return cmd
}

func newAchievementCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "achievement",
		Aliases: []string{"ach"},
		Short:   "Manage achievements",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				printAchievements(s)
				return nil
			})
		},
	}

	var desc string
	add := &cobra.Command{
		Use:   "add <target> <title>",
		Short: "Add an achievement unlocked at target lifetime points",
		Args:  minArgs(2, "target and title are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("target must be an integer: %w", err)
			}
			return withSession(cmd, opts, func(s *session) error {
				a, err := s.svc.AddAchievement(strings.Join(args[1:], " "), desc, target)
				if err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s\n", ui.Good.Render("Added achievement"), a.Title)
				// A target below the lifetime total unlocks at once.
				s.printEffects(0, s.svc.EvaluateAchievements())
				return nil
			})
		},
	}
	add.Flags().StringVar(&desc, "desc", "", "Description")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an achievement",
		Args:  exactArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id := args[0]
				for _, a := range s.svc.Achievements() {
					if strings.HasPrefix(a.ID, id) {
						id = a.ID
						break
					}
				}
				if err := s.svc.DeleteAchievement(id); err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s\n", ui.Warn.Render("Deleted achievement"), id)
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}

func newBgmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "bgm [on|off]",
		Short:     "Show or set the background music preference",
		ValidArgs: []string{"on", "off"},
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				if len(args) == 1 {
					switch strings.ToLower(args[0]) {
					case "on":
						s.svc.SetBgmEnabled(true)
					case "off":
						s.svc.SetBgmEnabled(false)
					default:
						return fmt.Errorf("expected on or off, got %q", args[0])
					}
					s.touch()
				}
				state := "off"
				if s.svc.BgmEnabled() {
					state = "on"
				}
				s.printf("%s\n", ui.LabelValue("BGM", state))
				return nil
			})
		},
	}
}
