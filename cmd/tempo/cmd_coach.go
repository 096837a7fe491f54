package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/tempo/pkg/coach"
	"github.com/stefanpenner/tempo/pkg/routine"
	"github.com/stefanpenner/tempo/pkg/store"
)

const coachTimeout = 30 * time.Second

func requireCoach(ctx context.Context, o *options) (*coach.Coach, error) {
	c := newCoach(ctx, o)
	if c == nil {
		return nil, coach.ErrNoAPIKey
	}
	return c, nil
}

func newTipCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tip <block-id>",
		Short: "Ask the coach for a tip on a block and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), coachTimeout)
			defer cancel()

			c, err := requireCoach(ctx, o)
			if err != nil {
				return err
			}
			r, err := o.store.ActiveRoutine()
			if err != nil {
				return err
			}
			b, _, ok := r.Block(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", routine.ErrBlockNotFound, args[0])
			}

			tip, err := c.BlockTip(ctx, b)
			if err != nil {
				return err
			}
			b.Suggestion = tip
			if err := o.store.SaveRoutine(r.WithBlock(b)); err != nil {
				return err
			}

			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), map[string]string{"block": b.ID, "tip": tip})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tip)
			return nil
		},
	}
}

func newDraftCmd(o *options) *cobra.Command {
	var use bool
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Have the coach draft a routine for the rest of today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), coachTimeout)
			defer cancel()

			c, err := requireCoach(ctx, o)
			if err != nil {
				return err
			}
			r, err := c.DraftRoutine(ctx, time.Now())
			if err != nil {
				return err
			}
			if err := saveDraft(o.store, r, use); err != nil {
				return err
			}

			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), r)
			}
			printRoutine(cmd.OutOrStdout(), &r, time.Now())
			return nil
		},
	}
	cmd.Flags().BoolVar(&use, "use", false, "make the draft the active routine")
	return cmd
}

func saveDraft(s *store.Store, r routine.Routine, use bool) error {
	if err := s.CreateRoutine(r); err != nil {
		return err
	}
	if use {
		return s.SetActive(r.ID)
	}
	return nil
}
