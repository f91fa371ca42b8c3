package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rhodes-todo/app"
	"rhodes-todo/model"
	"rhodes-todo/ui"
)

func newTemplateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Manage reusable order templates",
	}

	var f taskFlags
	add := &cobra.Command{
		Use:   "add [text]",
		Short: "Save a template",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				catID, err := resolveCategory(s, f.category)
				if err != nil {
					return err
				}
				in := app.TemplateInput{
					Text:            strings.Join(args, " "),
					Priority:        priorityOf(f.urgent),
					CategoryID:      catID,
					Points:          f.points,
					Frequency:       f.every,
					RecurrenceLimit: f.limit,
				}
				for _, text := range f.subtasks {
					in.Subtasks = append(in.Subtasks, model.SubtaskBlueprint{Text: text, Points: f.subPoints})
				}
				tmp := s.svc.CreateTemplate(in)
				s.touch()
				s.printf("%s %s %s\n", ui.Good.Render("Saved template"), ui.Muted.Render(shortID(tmp.ID)), tmp.Text)
				return nil
			})
		},
	}
	f.register(add)
	add.Flags().StringArrayVarP(&f.subtasks, "sub", "s", nil, "Subtask text (repeatable)")
	add.Flags().IntVar(&f.subPoints, "sub-points", 0, "Points for each subtask")

	var category string
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				catID, err := resolveCategory(s, category)
				if err != nil {
					return err
				}
				s.printf("%s\n", ui.Heading(ui.IconOrder, "Warehouse"))
				templates := s.svc.TemplatesInCategory(catID)
				if len(templates) == 0 {
					s.printf("%s\n", ui.Muted.Render("No templates."))
				}
				for _, t := range templates {
					line := fmt.Sprintf("  %s %s", ui.Muted.Render(shortID(t.ID)), t.Text)
					if t.Points > 0 {
						line += " " + ui.Gold.Render(fmt.Sprintf("%s%d", ui.IconPoints, t.Points))
					}
					if name := s.svc.CategoryName(t.CategoryID); name != "" {
						line += " " + ui.Key.Render("#"+name)
					}
					if len(t.Subtasks) > 0 {
						line += " " + ui.Muted.Render(fmt.Sprintf("(%d subtasks)", len(t.Subtasks)))
					}
					s.printf("%s\n", line)
				}
				return nil
			})
		},
	}
	list.Flags().StringVarP(&category, "category", "c", "", "Only this category")

	deploy := &cobra.Command{
		Use:   "deploy <id>",
		Short: "Create an order from a template, due today",
		Args:  exactArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id, err := s.svc.ResolveTemplateID(args[0])
				if err != nil {
					return err
				}
				task, err := s.svc.DeployTemplate(id, s.today)
				if err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s %s\n", ui.Good.Render("Deployed"), ui.Muted.Render(shortID(task.ID)), ui.TaskLine(task, s.today, s.svc.CategoryName(task.CategoryID)))
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a template",
		Args:  exactArgs(1, "id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id, err := s.svc.ResolveTemplateID(args[0])
				if err != nil {
					return err
				}
				if err := s.svc.DeleteTemplate(id); err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s\n", ui.Warn.Render("Deleted template"), shortID(id))
				return nil
			})
		},
	}

	cmd.AddCommand(add, list, deploy, rm)
	return cmd
}

func newCategoryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				s.printf("%s\n", ui.Heading("", "Categories"))
				for _, c := range s.svc.Categories() {
					s.printf("  %s %s\n", ui.Muted.Render(c.ID), c.Name)
				}
				return nil
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  minArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				c, err := s.svc.AddCategory(strings.Join(args, " "))
				if err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s %s\n", ui.Good.Render("Added category"), ui.Muted.Render(c.ID), c.Name)
				return nil
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <id|name> <new name>",
		Short: "Rename a category",
		Args:  minArgs(2, "category and new name are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id, err := s.svc.ResolveCategoryID(args[0])
				if err != nil {
					return err
				}
				c, err := s.svc.RenameCategory(id, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s\n", ui.Good.Render("Renamed to"), c.Name)
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id|name>",
		Short: "Delete a category; its orders and templates become unassigned",
		Args:  exactArgs(1, "category is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id, err := s.svc.ResolveCategoryID(args[0])
				if err != nil {
					return err
				}
				if err := s.svc.DeleteCategory(id); err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s\n", ui.Warn.Render("Deleted category"), id)
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, rename, rm)
	return cmd
}
