package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/tempo/pkg/engine"
	"github.com/stefanpenner/tempo/pkg/journal"
)

func newEvaluateCmd(o *options) *cobra.Command {
	var ev journal.Evaluation
	var limit int

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Record today's check-in, or list recent ones when no rating is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			j, err := journal.Open(ctx, o.store.JournalPath())
			if err != nil {
				return err
			}
			defer j.Close()

			now := time.Now()
			if !cmd.Flags().Changed("rating") {
				evals, err := j.Evaluations(ctx, limit)
				if err != nil {
					return err
				}
				streak, err := j.Streak(ctx, now)
				if err != nil {
					return err
				}
				if o.jsonOut {
					return outputJSON(cmd.OutOrStdout(), map[string]interface{}{"streak": streak, "evaluations": evals})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Streak: %d day(s)\n", streak)
				for _, e := range evals {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %d/5  plan:%-7s mood:%-8s energy:%d\n", e.Date, e.Rating, e.PlanCompletion, e.Mood, e.Energy)
				}
				return nil
			}

			if ev.Date == "" {
				ev.Date = engine.DayKey(now)
			}
			fired, err := j.Fired(ctx, ev.Date)
			if err != nil {
				return err
			}
			ev.InteractionScore = len(fired)
			if err := j.SaveEvaluation(ctx, ev); err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), ev)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved evaluation for %s\n", ev.Date)
			return nil
		},
	}
	cmd.Flags().StringVar(&ev.Date, "date", "", "day to evaluate (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&ev.Rating, "rating", 0, "how the day went, 1 to 5")
	cmd.Flags().StringVar(&ev.PlanCompletion, "plan", "partial", "did you follow the plan: yes, partial or no")
	cmd.Flags().StringVar(&ev.Mood, "mood", "neutral", "great, good, neutral, bad or terrible")
	cmd.Flags().IntVar(&ev.Energy, "energy", 5, "energy level, 1 to 10")
	cmd.Flags().StringVar(&ev.Note, "note", "", "free-form reflection")
	cmd.Flags().IntVar(&limit, "limit", 7, "how many past evaluations to list")
	return cmd
}

func newHistoryCmd(o *options) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the events fired on a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			j, err := journal.Open(ctx, o.store.JournalPath())
			if err != nil {
				return err
			}
			defer j.Close()

			if day == "" {
				day = engine.DayKey(time.Now())
			}
			fired, err := j.Fired(ctx, day)
			if err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), fired)
			}
			if len(fired) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing fired on %s\n", day)
				return nil
			}
			for _, f := range fired {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-11s %s\n", f.FiredAt.Local().Format("15:04:05"), f.Kind, f.Activity)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day to show (YYYY-MM-DD, default today)")
	return cmd
}
