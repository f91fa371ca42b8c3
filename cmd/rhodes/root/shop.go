package root

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rhodes-todo/app"
	"rhodes-todo/ui"
)

func newShopCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Spend points in the store",
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List store items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				s.printf("%s %s\n", ui.Heading(ui.IconPoints, "Store"), ui.LabelValue("Balance", s.svc.Points()))
				for _, it := range s.svc.StoreItems() {
					price := ui.Gold.Render(fmt.Sprintf("%s%d", ui.IconPoints, it.Cost))
					if it.Cost > s.svc.Points() {
						price = ui.Muted.Render(fmt.Sprintf("%s%d", ui.IconPoints, it.Cost))
					}
					name := it.Name
					if it.Icon != "" {
						name = it.Icon + " " + name
					}
					line := fmt.Sprintf("  %s %s %s", ui.Muted.Render(shortID(it.ID)), name, price)
					if it.Description != "" {
						line += " " + ui.Muted.Render(it.Description)
					}
					s.printf("%s\n", line)
				}
				return nil
			})
		},
	}

	var in app.StoreItemInput
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a store item",
		Args:  minArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				in.Name = strings.Join(args, " ")
				it, err := s.svc.AddStoreItem(in)
				if err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s %s\n", ui.Good.Render("Added item"), ui.Muted.Render(shortID(it.ID)), it.Name)
				return nil
			})
		},
	}
	add.Flags().IntVar(&in.Cost, "cost", 0, "Price in points")
	add.Flags().StringVar(&in.Description, "desc", "", "Description")
	add.Flags().StringVar(&in.Icon, "icon", "", "Icon")

	rm := &cobra.Command{
		Use:   "rm <id|name>",
		Short: "Remove a store item",
		Args:  minArgs(1, "item is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id, err := s.svc.ResolveItemID(strings.Join(args, " "))
				if err != nil {
					return err
				}
				if err := s.svc.DeleteStoreItem(id); err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s\n", ui.Warn.Render("Removed item"), shortID(id))
				return nil
			})
		},
	}

	buy := &cobra.Command{
		Use:   "buy <id|name>",
		Short: "Buy a store item",
		Args:  minArgs(1, "item is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				id, err := s.svc.ResolveItemID(strings.Join(args, " "))
				if err != nil {
					return err
				}
				res, err := s.svc.Purchase(id)
				if err != nil {
					return err
				}
				s.touch()
				s.printf("%s %s\n", ui.Good.Render("Purchased"), res.Item.Name)
				s.printEffects(res.Delta, nil)
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, rm, buy)
	return cmd
}

func newGachaCmd(opts *options) *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "gacha",
		Short: "Spend points on a random store reward",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				if !cmd.Flags().Changed("cost") {
					cost = s.cfg.GachaCost
				}
				res, err := s.svc.Gacha(cost)
				if err != nil {
					return err
				}
				s.touch()
				if res.NoStock {
					s.printf("%s %s\n", ui.Warn.Render(ui.IconWarn), "The store is empty; the permit was spent on nothing.")
				} else {
					s.printf("%s %s %s\n", ui.Heading("", "Headhunting"), ui.Stars(res.Rarity), res.Item.Name)
				}
				s.printEffects(res.Delta, nil)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "Points per draw (default gacha_cost)")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the purchase history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(s *session) error {
				history := s.svc.PurchaseHistory()
				s.printf("%s\n", ui.Heading("", "Purchase history"))
				if len(history) == 0 {
					s.printf("%s\n", ui.Muted.Render("Nothing bought yet."))
					return nil
				}
				now := opts.now()
				for i := len(history) - 1; i >= 0; i-- {
					h := history[i]
					kind := "buy"
					if h.IsGacha {
						kind = "gacha"
					}
					s.printf("  %s %s %s %s\n",
						ui.Muted.Render(time.UnixMilli(h.Timestamp).Format("2006-01-02 15:04")),
						ui.Key.Render(kind), h.ItemName,
						ui.Muted.Render(fmt.Sprintf("-%d, %s", h.Cost, app.TimeAgo(h.Timestamp, now))))
				}
				return nil
			})
		},
	}
}
