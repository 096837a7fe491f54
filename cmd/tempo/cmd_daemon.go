package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stefanpenner/tempo/pkg/engine"
)

const defaultDaemonAddr = "127.0.0.1:9464"

func newDaemonCmd(o *options) *cobra.Command {
	var interval time.Duration
	var addr string

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the engine headless with desktop notifications",
		Long: `Run the engine without a terminal UI.

A lock is released when its block ends. Before that, "tempo unlock" reaches
the daemon over HTTP on --addr, which also serves Prometheus metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("interval") {
				settings, err := o.store.LoadSettings()
				if err != nil {
					o.logger.Warn("using default settings", zap.Error(err))
				}
				interval = settings.TickInterval
			}
			if err := engine.ValidateInterval(interval); err != nil {
				return err
			}
			return runDaemon(cmd.Context(), o, interval, addr)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", engine.DefaultInterval, "evaluation interval; must split one minute evenly")
	cmd.Flags().StringVar(&addr, "addr", defaultDaemonAddr, "serve /metrics and /unlock here; empty disables")
	return cmd
}

func runDaemon(ctx context.Context, o *options, interval time.Duration, addr string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	eng, j, err := newEngine(ctx, o, engine.WithMetrics(engine.NewMetrics(reg)), engine.WithLockLapse())
	if err != nil {
		return err
	}
	defer j.Close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		o.logger.Info("engine started", zap.Duration("interval", interval))
		return eng.Run(gctx, interval)
	})

	if addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           newDaemonMux(eng, reg, o.logger.Named("http")),
			ReadHeaderTimeout: 5 * time.Second,
		}

		g.Go(func() error {
			o.logger.Info("serving", zap.String("addr", addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		o.logger.Info("engine stopped")
		return nil
	}
	return err
}

func newDaemonMux(eng *engine.Engine, reg *prometheus.Registry, logger *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("/unlock", unlockHandler(eng, logger))
	return mux
}

type unlockReply struct {
	Action   string `json:"action"`
	Block    string `json:"block"`
	Activity string `json:"activity"`
}

// unlockHandler applies POST /unlock?action=late|skip|emergency.
func unlockHandler(eng *engine.Engine, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		action, err := engine.ParseUnlockAction(r.URL.Query().Get("action"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		released, err := eng.Unlock(r.Context(), action)
		switch {
		case errors.Is(err, engine.ErrNotLocked):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case err != nil:
			logger.Warn("unlock failed", zap.String("action", string(action)), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(unlockReply{
			Action:   string(action),
			Block:    released.BlockID,
			Activity: released.Activity,
		})
	}
}

func newUnlockCmd(o *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:       "unlock <late|skip|emergency>",
		Short:     "Release the lock held by a running daemon",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(engine.UnlockLate), string(engine.UnlockSkip), string(engine.UnlockEmergency)},
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := engine.ParseUnlockAction(args[0])
			if err != nil {
				return err
			}
			reply, err := requestUnlock(cmd.Context(), addr, action)
			if err != nil {
				return err
			}
			if o.jsonOut {
				return outputJSON(cmd.OutOrStdout(), reply)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlocked %s (%s)\n", reply.Activity, reply.Action)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultDaemonAddr, "daemon address")
	return cmd
}

func requestUnlock(ctx context.Context, addr string, action engine.UnlockAction) (unlockReply, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u := url.URL{Scheme: "http", Host: addr, Path: "/unlock", RawQuery: url.Values{"action": {string(action)}}.Encode()}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return unlockReply{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return unlockReply{}, fmt.Errorf("reaching daemon at %s: %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return unlockReply{}, fmt.Errorf("daemon refused unlock: %s", strings.TrimSpace(string(body)))
	}
	var reply unlockReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return unlockReply{}, fmt.Errorf("decoding daemon reply: %w", err)
	}
	return reply, nil
}
