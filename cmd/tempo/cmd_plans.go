package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/tempo/pkg/coach"
	"github.com/stefanpenner/tempo/pkg/routine"
)

func newWorkoutCmd(o *options) *cobra.Command {
	var equipment, level, at string
	cmd := &cobra.Command{
		Use:   "workout <target...>",
		Short: "Have the coach plan a workout, optionally adding it as a block",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseAt(at)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), coachTimeout)
			defer cancel()

			c, err := requireCoach(ctx, o)
			if err != nil {
				return err
			}
			plan, err := c.Workout(ctx, strings.Join(args, " "), equipment, level)
			if err != nil {
				return err
			}
			if at != "" {
				if err := addBlock(o, plan.Block(start)); err != nil {
					return err
				}
			}

			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), plan)
			}
			fmt.Fprintln(cmd.OutOrStdout(), plan.Markdown())
			return nil
		},
	}
	cmd.Flags().StringVar(&equipment, "equipment", "bodyweight", "available equipment")
	cmd.Flags().StringVar(&level, "level", "beginner", "one of "+strings.Join(coach.Levels, ", "))
	cmd.Flags().StringVar(&at, "add", "", "add the workout to the active routine at HH:MM")
	return cmd
}

func newMeditateCmd(o *options) *cobra.Command {
	var minutes int
	var at string
	cmd := &cobra.Command{
		Use:   "meditate <occasion...>",
		Short: "Have the coach write a guided meditation, optionally adding it as a block",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseAt(at)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), coachTimeout)
			defer cancel()

			c, err := requireCoach(ctx, o)
			if err != nil {
				return err
			}
			occasion := strings.Join(args, " ")
			script, err := c.Meditation(ctx, occasion, minutes)
			if err != nil {
				return err
			}
			if at != "" {
				if err := addBlock(o, coach.MeditationBlock(start, occasion, script)); err != nil {
					return err
				}
			}

			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), map[string]any{"occasion": occasion, "minutes": minutes, "script": script})
			}
			fmt.Fprintln(cmd.OutOrStdout(), script)
			return nil
		},
	}
	cmd.Flags().IntVar(&minutes, "minutes", 5, "length of the session")
	cmd.Flags().StringVar(&at, "add", "", "add the meditation to the active routine at HH:MM")
	return cmd
}

// parseAt parses an optional --add time; empty means do not add.
func parseAt(at string) (routine.TimeOfDay, error) {
	if at == "" {
		return 0, nil
	}
	return routine.ParseTimeOfDay(at)
}

func addBlock(o *options, b routine.TimeBlock) error {
	_, err := o.store.UpdateActive(func(r routine.Routine) (routine.Routine, error) {
		return r.WithBlock(b), nil
	})
	return err
}
