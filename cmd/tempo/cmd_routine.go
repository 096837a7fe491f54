package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/stefanpenner/tempo/pkg/engine"
	"github.com/stefanpenner/tempo/pkg/routine"
	"github.com/stefanpenner/tempo/pkg/store"
)

type statusView struct {
	Routine    string             `json:"routine"`
	Now        string             `json:"now"`
	Completion int                `json:"completion"`
	Current    *routine.TimeBlock `json:"current,omitempty"`
	Progress   float64            `json:"progress"`
	Next       *routine.TimeBlock `json:"next,omitempty"`
}

func newStatusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current and next block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := o.store.ActiveRoutine()
			if err != nil {
				return err
			}
			now := time.Now()
			res := routine.Resolve(r, now)

			v := statusView{
				Routine:    r.ID,
				Now:        routine.TimeOfDayOf(now).String(),
				Completion: routine.CompletionPercent(r, now),
				Current:    res.Current,
			}
			for _, b := range res.Blocks {
				if b.Status == routine.StatusActive {
					v.Progress = b.Progress
				}
			}
			if res.NextUpcoming >= 0 {
				next := r.Blocks[res.NextUpcoming]
				v.Next = &next
			}

			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), v)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  %d%% of day\n", r.Name, v.Now, v.Completion)
			if v.Current != nil {
				fmt.Fprintf(out, "Now:  %s %s (%d%%)\n", v.Current.Start, v.Current.Activity, int(v.Progress*100))
			} else {
				fmt.Fprintln(out, "Now:  nothing scheduled")
			}
			if v.Next != nil {
				fmt.Fprintf(out, "Next: %s %s\n", v.Next.Start, v.Next.Activity)
			}
			return nil
		},
	}
}

func newListCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List routines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routines, err := o.store.ListRoutines()
			if err != nil && len(routines) == 0 {
				return err
			}
			active, _ := o.store.ActiveID()

			if o.jsonOut {
				type entry struct {
					ID     string `json:"id"`
					Name   string `json:"name"`
					Blocks int    `json:"blocks"`
					Active bool   `json:"active"`
				}
				entries := make([]entry, 0, len(routines))
				for _, r := range routines {
					entries = append(entries, entry{r.ID, r.Name, len(r.Blocks), r.ID == active})
				}
				return outputJSON(cmd.OutOrStdout(), entries)
			}
			for _, r := range routines {
				marker := " "
				if r.ID == active {
					marker = "●"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-24s %s (%d blocks)\n", marker, r.ID, r.Name, len(r.Blocks))
			}
			// Unreadable files are reported after the readable ones.
			return err
		},
	}
}

func newShowCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a routine's blocks (default: active)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRoutineArg(o.store, args)
			if err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), r)
			}
			printRoutine(cmd.OutOrStdout(), r, time.Now())
			return nil
		},
	}
}

func printRoutine(out io.Writer, r *routine.Routine, now time.Time) {
	fmt.Fprintf(out, "%s (%s)\n", r.Name, r.ID)
	if r.Description != "" {
		fmt.Fprintln(out, r.Description)
	}
	fmt.Fprintln(out)

	res := routine.Resolve(r, now)
	for i, b := range r.Blocks {
		icon := "○"
		switch res.Blocks[i].Status {
		case routine.StatusCompleted:
			icon = "✓"
		case routine.StatusActive:
			icon = "◐"
		}
		var flags []string
		if b.Locks() {
			flags = append(flags, "lock")
		}
		if !b.AlarmEnabled {
			flags = append(flags, "no alarm")
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = " [" + strings.Join(flags, ", ") + "]"
		}
		fmt.Fprintf(out, "%s %s  %-8s %s%s  (%s)\n", icon, b.Start, b.Kind, b.Activity, suffix, b.ID)
	}
}

func loadRoutineArg(s *store.Store, args []string) (*routine.Routine, error) {
	if len(args) == 0 {
		return s.ActiveRoutine()
	}
	return s.LoadRoutine(args[0])
}

func newUseCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Select the active routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.store.SetActive(args[0]); err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), map[string]string{"active": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active: %s\n", args[0])
			return nil
		},
	}
}

func newDeleteCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := o.store.DeleteRoutine(args[0])
			if err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0], "active": active})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted: %s (active: %s)\n", args[0], active)
			return nil
		},
	}
}

func newBlockCmd(o *options) *cobra.Command {
	block := &cobra.Command{Use: "block", Short: "Edit blocks of the active routine"}

	var lock, noAlarm bool
	var note, location string
	add := &cobra.Command{
		Use:   "add <HH:MM> <type> <activity...>",
		Short: "Add a block",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := routine.ParseTimeOfDay(args[0])
			if err != nil {
				return err
			}
			kind, err := routine.ParseKind(strings.ToLower(args[1]))
			if err != nil {
				return err
			}
			if lock && kind != routine.KindSacred {
				return fmt.Errorf("--lock needs a sacred block, got %s", kind)
			}
			b := routine.NewBlock(start, kind, strings.Join(args[2:], " "))
			b.EnforceLock = lock
			b.AlarmEnabled = !noAlarm
			b.Note = note
			b.Location = location

			if _, err := o.store.UpdateActive(func(r routine.Routine) (routine.Routine, error) {
				return r.WithBlock(b), nil
			}); err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), b)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added: %s %s (%s)\n", b.Start, b.Activity, b.ID)
			return nil
		},
	}
	add.Flags().BoolVar(&lock, "lock", false, "lock the screen for this sacred block")
	add.Flags().BoolVar(&noAlarm, "no-alarm", false, "do not sound the start alarm")
	add.Flags().StringVar(&note, "note", "", "note shown with the block")
	add.Flags().StringVar(&location, "location", "", "where the block happens")

	rm := &cobra.Command{
		Use:   "rm <block-id>",
		Short: "Remove a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := o.store.UpdateActive(func(r routine.Routine) (routine.Routine, error) {
				return r.WithoutBlock(args[0])
			}); err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed: %s\n", args[0])
			return nil
		},
	}

	block.AddCommand(add, rm)
	return block
}

func newShiftCmd(o *options) *cobra.Command {
	var earlier bool
	cmd := &cobra.Command{
		Use:   "shift <minutes>",
		Short: "Move every block of the active routine (use --earlier or `-- -15` to go back)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid minutes %q: %w", args[0], err)
			}
			if earlier {
				delta = -delta
			}
			eng := engine.New(store.EngineSource{Store: o.store}, nil, engine.WithLogger(o.logger))
			r, err := eng.Shift(context.Background(), delta)
			if err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), r)
			}
			printRoutine(cmd.OutOrStdout(), &r, time.Now())
			return nil
		},
	}
	cmd.Flags().BoolVar(&earlier, "earlier", false, "shift earlier instead of later")
	return cmd
}

func newExportCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export [id]",
		Short: "Print a share code for a routine (default: active)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRoutineArg(o.store, args)
			if err != nil {
				return err
			}
			code, err := routine.EncodeShare(*r)
			if err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), map[string]string{"id": r.ID, "code": code})
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
}

func newImportCmd(o *options) *cobra.Command {
	var use bool
	cmd := &cobra.Command{
		Use:   "import <code>",
		Short: "Import a routine from a share code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := routine.DecodeShare(args[0])
			if err != nil {
				return err
			}
			if err := o.store.CreateRoutine(r); err != nil {
				return err
			}
			if use {
				if err := o.store.SetActive(r.ID); err != nil {
					return err
				}
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), r)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported: %s (%s)\n", r.Name, r.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&use, "use", false, "make the imported routine active")
	return cmd
}

func newSettingsCmd(o *options) *cobra.Command {
	var vitaminD, sound string
	var vitaminDEnabled bool
	var volume float64
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := o.store.LoadSettings()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			changed := false
			for _, name := range []string{"vitamin-d", "vitamin-d-enabled", "volume", "sound", "interval"} {
				changed = changed || flags.Changed(name)
			}
			if flags.Changed("vitamin-d") {
				t, err := routine.ParseTimeOfDay(vitaminD)
				if err != nil {
					return err
				}
				settings.VitaminDTime = t
			}
			if flags.Changed("vitamin-d-enabled") {
				settings.VitaminDEnabled = vitaminDEnabled
			}
			if flags.Changed("volume") {
				settings.Volume = volume
			}
			if flags.Changed("sound") {
				settings.AlarmSound = sound
			}
			if flags.Changed("interval") {
				settings.TickInterval = interval
			}
			if changed {
				if err := o.store.SaveSettings(settings); err != nil {
					return err
				}
			}

			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), settings)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Vitamin D:     %s (enabled: %t)\n", settings.VitaminDTime, settings.VitaminDEnabled)
			fmt.Fprintf(out, "Volume:        %.2f\n", settings.Volume)
			if settings.AlarmSound != "" {
				fmt.Fprintf(out, "Alarm sound:   %s\n", settings.AlarmSound)
			}
			fmt.Fprintf(out, "Tick interval: %s\n", settings.TickInterval)
			return nil
		},
	}
	cmd.Flags().StringVar(&vitaminD, "vitamin-d", "", "vitamin D reminder time (HH:MM)")
	cmd.Flags().BoolVar(&vitaminDEnabled, "vitamin-d-enabled", true, "enable the vitamin D reminder")
	cmd.Flags().Float64Var(&volume, "volume", 0.5, "alarm volume between 0 and 1")
	cmd.Flags().StringVar(&sound, "sound", "", "alarm sound file")
	cmd.Flags().DurationVar(&interval, "interval", engine.DefaultInterval, "evaluation interval; must split one minute evenly")
	return cmd
}

// JSON helpers

func outputJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
