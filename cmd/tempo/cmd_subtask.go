package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/tempo/pkg/routine"
)

func newSubtaskCmd(o *options) *cobra.Command {
	subtask := &cobra.Command{Use: "subtask", Aliases: []string{"check"}, Short: "Manage a block's checklist"}

	add := &cobra.Command{
		Use:   "add <block-id> <text...>",
		Short: "Add a checklist item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := editBlock(o, args[0], func(b routine.TimeBlock) (routine.TimeBlock, error) {
				return b.WithSubtask(strings.Join(args[1:], " ")), nil
			})
			if err != nil {
				return err
			}
			return printChecklist(cmd.OutOrStdout(), o, b)
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <block-id> <subtask-id>",
		Short: "Mark a checklist item done or open",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := editBlock(o, args[0], func(b routine.TimeBlock) (routine.TimeBlock, error) {
				return b.ToggleSubtask(args[1])
			})
			if err != nil {
				return err
			}
			return printChecklist(cmd.OutOrStdout(), o, b)
		},
	}

	rm := &cobra.Command{
		Use:   "rm <block-id> <subtask-id>",
		Short: "Remove a checklist item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := editBlock(o, args[0], func(b routine.TimeBlock) (routine.TimeBlock, error) {
				return b.WithoutSubtask(args[1])
			})
			if err != nil {
				return err
			}
			return printChecklist(cmd.OutOrStdout(), o, b)
		},
	}

	list := &cobra.Command{
		Use:   "list <block-id>",
		Short: "Show a block's checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := o.store.ActiveRoutine()
			if err != nil {
				return err
			}
			b, _, ok := r.Block(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", routine.ErrBlockNotFound, args[0])
			}
			return printChecklist(cmd.OutOrStdout(), o, b)
		},
	}

	subtask.AddCommand(add, toggle, rm, list)
	return subtask
}

// editBlock applies fn to a block of the active routine and saves it.
func editBlock(o *options, id string, fn func(routine.TimeBlock) (routine.TimeBlock, error)) (routine.TimeBlock, error) {
	var edited routine.TimeBlock
	_, err := o.store.UpdateActive(func(r routine.Routine) (routine.Routine, error) {
		b, _, ok := r.Block(id)
		if !ok {
			return r, fmt.Errorf("%w: %s", routine.ErrBlockNotFound, id)
		}
		var err error
		if edited, err = fn(b); err != nil {
			return r, err
		}
		return r.WithBlock(edited), nil
	})
	return edited, err
}

func printChecklist(out io.Writer, o *options, b routine.TimeBlock) error {
	if o.jsonOut {
		return outputJSON(out, map[string]any{
			"block":    b.ID,
			"percent":  b.SubtaskPercent(),
			"subtasks": b.Subtasks,
		})
	}
	fmt.Fprintf(out, "%s %s  %d%% done\n", b.Start, b.Activity, b.SubtaskPercent())
	for _, st := range b.Subtasks {
		box := "[ ]"
		if st.Done {
			box = "[x]"
		}
		fmt.Fprintf(out, "  %s %s  %s\n", box, st.Text, shortID(st.ID))
	}
	return nil
}

// shortID trims a uuid to the prefix accepted by id lookups.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
