package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/tempo/pkg/store"
)

func newGoalCmd(o *options) *cobra.Command {
	goal := &cobra.Command{Use: "goal", Short: "Track daily to yearly goals"}

	var period, category string
	add := &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := o.store.AddGoal(strings.Join(args, " "), store.GoalPeriod(period), category)
			if err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), g)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s goal: %s (%s)\n", g.Period, g.Text, shortID(g.ID))
			return nil
		},
	}
	add.Flags().StringVar(&period, "period", string(store.PeriodDaily), "daily, weekly, monthly or yearly")
	add.Flags().StringVar(&category, "category", "", "free-form category")

	list := &cobra.Command{
		Use:   "list",
		Short: "List goals by period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			goals, err := o.store.LoadGoals()
			if err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), goals)
			}
			if len(goals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No goals yet. Add one with: tempo goal add <text>")
				return nil
			}
			byPeriod := store.GoalsByPeriod(goals)
			for _, p := range store.GoalPeriods {
				if len(byPeriod[p]) == 0 {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", strings.ToUpper(string(p)))
				for _, g := range byPeriod[p] {
					status := "○"
					if g.Completed {
						status = "✓"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %s  %s\n", status, shortID(g.ID), g.Text)
				}
			}
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a goal done or not done (id prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := o.store.ToggleGoal(args[0])
			if err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), g)
			}
			state := "open"
			if g.Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s → %s\n", g.Text, state)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.store.DeleteGoal(args[0]); err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s\n", args[0])
			return nil
		},
	}

	goal.AddCommand(add, list, toggle, rm)
	return goal
}
