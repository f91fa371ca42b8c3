package root

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rhodes-todo/app"
	"rhodes-todo/model"
	"rhodes-todo/ui"
)

// taskFlags are shared by add and edit.
type taskFlags struct {
	points    int
	urgent    bool
	category  string
	due       string
	every     int
	limit     int
	subtasks  []string
	subPoints int
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.points, "points", "p", 0, "Points paid on completion")
	cmd.Flags().BoolVarP(&f.urgent, "urgent", "u", false, "Mark as urgent")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "Category name or id")
	cmd.Flags().StringVarP(&f.due, "due", "d", "", "Due date (YYYY-MM-DD, today, tomorrow or +N)")
	cmd.Flags().IntVar(&f.every, "every", 0, "Repeat every N days")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Total number of instances for a repeating order")
}

func newAddCmd(opts *options) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add an operation order",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("text is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				in := app.CreateTaskInput{
					Text:            strings.Join(args, " "),
					Priority:        priorityOf(f.urgent),
					Points:          f.points,
					Frequency:       f.every,
					RecurrenceLimit: f.limit,
				}
				var err error
				if in.CategoryID, err = resolveCategory(s, f.category); err != nil {
					return err
				}
				if in.DueDate, err = parseDue(f.due, s.today); err != nil {
					return err
				}
				for _, text := range f.subtasks {
					in.Subtasks = append(in.Subtasks, model.SubtaskBlueprint{Text: text, Points: f.subPoints})
				}

				task, err := s.svc.CreateTask(in)
				if err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s %s\n", ui.Good.Render("Added"), ui.Muted.Render(shortID(task.ID)), ui.TaskLine(task, s.today, s.svc.CategoryName(task.CategoryID)))
				return nil
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringArrayVarP(&f.subtasks, "sub", "s", nil, "Subtask text (repeatable)")
	cmd.Flags().IntVar(&f.subPoints, "sub-points", 0, "Points for each subtask")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var filter string
	var category string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List operation orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := app.ParseTimeFilter(filter)
			if err != nil {
				return err
			}
			return withSession(cmd, opts, func(s *session) error {
				catID, err := resolveCategory(s, category)
				if err != nil {
					return err
				}
				tasks := s.svc.FilterTasks(tf, s.today)
				if catID != "" {
					kept := tasks[:0]
					for _, t := range tasks {
						if t.CategoryID == catID {
							kept = append(kept, t)
						}
					}
					tasks = kept
				}

				s.printf("%s %s\n", ui.Heading(ui.IconOrder, "Operations "+string(tf)), ui.Muted.Render(string(s.today)))
				if len(tasks) == 0 {
					s.printf("%s\n", ui.Muted.Render("No orders."))
					return nil
				}
				if tf == app.FilterAll {
					for _, g := range s.svc.GroupByCategory(tasks) {
						s.printf("%s\n", ui.H2.Render(g.Name))
						printTasks(s, g.Tasks, false)
					}
					return nil
				}
				printTasks(s, tasks, true)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(app.FilterAll), "today|week|month|all|incomplete")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category")
	return cmd
}

func printTasks(s *session, tasks []model.Task, withCategory bool) {
	for _, t := range tasks {
		cat := ""
		if withCategory {
			cat = s.svc.CategoryName(t.CategoryID)
		}
		s.printf("  %s %s\n", ui.Muted.Render(shortID(t.ID)), ui.TaskLine(t, s.today, cat))
		for _, st := range t.Subtasks {
			mark := ui.IconOpen
			if st.Completed {
				mark = ui.Good.Render(ui.IconDone)
			}
			line := fmt.Sprintf("      %s %s %s", mark, ui.Muted.Render(shortID(st.ID)), st.Text)
			if st.Points > 0 {
				line += " " + ui.Gold.Render(fmt.Sprintf("%s%d", ui.IconPoints, st.Points))
			}
			s.printf("%s\n", line)
		}
	}
}

func newDoneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle completion of an order",
		Args:    exactArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id, err := s.svc.ResolveTaskID(args[0])
				if err != nil {
					return err
				}
				res, err := s.svc.ToggleComplete(id, s.today)
				if err != nil {
					return err
				}
				s.touch()
				verb := ui.Good.Render("Completed")
				if !res.Task.Completed {
					verb = ui.Warn.Render("Reopened")
				}
				s.printf("%s %s\n", verb, res.Task.Text)
				if res.Spawned != nil {
					s.printf("%s next order due %s (%d left)\n", ui.Key.Render(ui.IconRepeat), res.Spawned.DueDate, res.Spawned.RecurrenceLimit)
				}
				s.printEffects(res.Delta, res.Unlocked)
				return nil
			})
		},
	}
}

func newSubCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sub",
		Short: "Manage subtasks",
	}

	var points int
	add := &cobra.Command{
		Use:   "add <task-id> <text>",
		Short: "Add a subtask",
		Args:  minArgs(2, "task id and text are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id, err := s.svc.ResolveTaskID(args[0])
				if err != nil {
					return err
				}
				sub, err := s.svc.AddSubtask(id, strings.Join(args[1:], " "), points)
				if err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s %s\n", ui.Good.Render("Added subtask"), ui.Muted.Render(shortID(sub.ID)), sub.Text)
				return nil
			})
		},
	}
	add.Flags().IntVarP(&points, "points", "p", 0, "Points paid on completion")

	toggle := &cobra.Command{
		Use:   "toggle <task-id> <subtask-id>",
		Short: "Toggle a subtask",
		Args:  exactArgs(2, "task id and subtask id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id, err := s.svc.ResolveTaskID(args[0])
				if err != nil {
					return err
				}
				subID, err := s.svc.ResolveSubtaskID(id, args[1])
				if err != nil {
					return err
				}
				res, err := s.svc.ToggleSubtask(id, subID)
				if err != nil {
					return err
				}
				s.touch()
				state := "open"
				if res.Subtask.Completed {
					state = "done"
				}
				s.printf("%s\n", ui.LabelValue(res.Subtask.Text, state))
				s.printEffects(res.Delta, res.Unlocked)
				return nil
			})
		},
	}

	cmd.AddCommand(add, toggle)
	return cmd
}

func newEditCmd(opts *options) *cobra.Command {
	var f taskFlags
	var text string
	var normal bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit fields of an order without settling points",
		Args:  exactArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id, err := s.svc.ResolveTaskID(args[0])
				if err != nil {
					return err
				}
				var patch app.TaskPatch
				flags := cmd.Flags()
				if flags.Changed("text") {
					patch.Text = &text
				}
				if flags.Changed("points") {
					patch.Points = &f.points
				}
				if flags.Changed("urgent") || flags.Changed("normal") {
					p := priorityOf(f.urgent && !normal)
					patch.Priority = &p
				}
				if flags.Changed("category") {
					catID, err := resolveCategory(s, f.category)
					if err != nil {
						return err
					}
					patch.CategoryID = &catID
				}
				if flags.Changed("due") {
					due, err := parseDue(f.due, s.today)
					if err != nil {
						return err
					}
					patch.DueDate = &due
				}
				if flags.Changed("every") {
					patch.Frequency = &f.every
				}
				if flags.Changed("limit") {
					patch.RecurrenceLimit = &f.limit
				}

				res, err := s.svc.EditTask(id, patch)
				if err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s\n", ui.Good.Render("Updated"), ui.TaskLine(res.Task, s.today, s.svc.CategoryName(res.Task.CategoryID)))
				s.printEffects(0, res.Unlocked)
				return nil
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&text, "text", "t", "", "New text")
	cmd.Flags().BoolVar(&normal, "normal", false, "Clear the urgent flag")
	return cmd
}

func newRmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an order",
		Args:    exactArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id, err := s.svc.ResolveTaskID(args[0])
				if err != nil {
					return err
				}
				if err := s.svc.DeleteTask(id); err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s\n", ui.Warn.Render("Deleted"), shortID(id))
				return nil
			})
		},
	}
}

func newDelayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delay <days>",
		Short: "Push every open dated order back by N days",
		Args:  exactArgs(1, "days is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("days must be an integer: %w", err)
			}
			return withSession(cmd, opts, func(s *session) error {
				n, err := s.svc.BulkDelay(days)
				if err != nil {
					return err
				}
				s.touch()
				s.printf("%s %d order(s) by %d day(s)\n", ui.Good.Render("Delayed"), n, days)
				return nil
			})
		},
	}
}

func newSweepCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Penalize overdue orders and list them",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The sweep already ran while the session opened.
			return withSession(cmd, opts, func(s *session) error {
				overdue := s.svc.Overdue(s.today)
				if len(overdue) == 0 {
					s.printf("%s\n", ui.Good.Render("No overdue orders."))
					return nil
				}
				s.printf("%s\n", ui.Heading(ui.IconPenalty, "Overdue"))
				for _, t := range overdue {
					s.printf("  %s %s %s\n", ui.Muted.Render(shortID(t.ID)), ui.TaskLine(t, s.today, ""), ui.Bad.Render(fmt.Sprintf("-%d", app.Penalty(t.Points))))
				}
				return nil
			})
		},
	}
}

func newClearCmd(opts *options) *cobra.Command {
	var hide bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete completed orders (or just hide them with --hide)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				var n int
				verb := "Cleared"
				if hide {
					n = s.svc.HideCompleted()
					verb = "Hid"
				} else {
					n = s.svc.ClearCompleted()
				}
				if n > 0 {
					s.touch()
				}
				s.printf("%s %d completed order(s)\n", ui.Good.Render(verb), n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&hide, "hide", false, "Hide instead of delete; hidden orders still count in stats")
	return cmd
}

func priorityOf(urgent bool) model.Priority {
	if urgent {
		return model.PriorityUrgent
	}
	return model.PriorityNormal
}

func resolveCategory(s *session, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", nil
	}
	return s.svc.ResolveCategoryID(ref)
}

// parseDue accepts YYYY-MM-DD, today, tomorrow or +N days.
func parseDue(s string, today model.Date) (model.Date, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return "", nil
	case s == "today":
		return today, nil
	case s == "tomorrow":
		return today.AddDays(1), nil
	case strings.HasPrefix(s, "+"):
		n, err := strconv.Atoi(s[1:])
		if err != nil || n < 0 {
			return "", fmt.Errorf("invalid relative date %q", s)
		}
		return today.AddDays(n), nil
	}
	return model.ParseDate(s)
}

// shortID is the display form of an id; any unique prefix resolves back.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func exactArgs(n int, msg string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.New(msg)
		}
		return nil
	}
}

func minArgs(n int, msg string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return errors.New(msg)
		}
		return nil
	}
}
