package root

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rhodes-todo/app"
	"rhodes-todo/config"
	"rhodes-todo/model"
	"rhodes-todo/store"
	"rhodes-todo/ui"
)

const opTimeout = 5 * time.Second

// session is one load / mutate / save cycle against the configured store.
type session struct {
	cfg     config.Config
	backend store.Backend
	svc     *app.Service
	today   model.Date
	log     *slog.Logger
	logFile *os.File
	out     io.Writer
	dirty   bool
}

// openSession loads state and runs the overdue sweep. When quiet is set the
// logger never writes to the terminal.
func openSession(cmd *cobra.Command, opts *options, quiet bool) (*session, error) {
	cfgPath := opts.configPath
	if cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if opts.statePath != "" {
		cfg.StatePath = opts.statePath
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, out: cmd.OutOrStdout()}
	if err := s.setupLogger(cmd.ErrOrStderr(), opts.verbose, quiet); err != nil {
		return nil, err
	}

	s.today, err = resolveToday(opts, cfg)
	if err != nil {
		s.closeLog()
		return nil, err
	}

	kind, err := store.ParseKind(cfg.Backend)
	if err != nil {
		s.closeLog()
		return nil, err
	}
	statePath, err := cfg.ResolvedStatePath()
	if err != nil {
		s.closeLog()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opTimeout)
	defer cancel()
	s.backend, err = store.Open(ctx, kind, statePath)
	if err != nil {
		s.closeLog()
		return nil, err
	}
	state, warnings, err := store.Load(ctx, s.backend)
	if err != nil {
		_ = s.backend.Close()
		s.closeLog()
		return nil, fmt.Errorf("load state: %w", err)
	}
	for _, w := range warnings {
		s.log.Warn("state load", "warning", w)
		if !quiet {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.Warn.Render(ui.IconWarn+" "+w))
		}
	}

	s.svc = app.NewService(state,
		app.WithClock(opts.now),
		app.WithGachaWeight(cfg.GachaWeight),
		app.WithLogger(s.log),
	)
	s.log.Debug("state loaded", "backend", kind, "path", statePath, "today", s.today, "points", s.svc.Points())

	sweep := s.svc.SweepOverdue(s.today)
	if len(sweep.Penalized) > 0 {
		s.dirty = true
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %d overdue order(s) penalized %s\n", ui.Bad.Render(ui.IconPenalty), len(sweep.Penalized), ui.Delta(sweep.Delta))
		}
	}
	return s, nil
}

func resolveToday(opts *options, cfg config.Config) (model.Date, error) {
	if opts.date != "" {
		d, err := model.ParseDate(opts.date)
		if err != nil {
			return "", fmt.Errorf("--date: %w", err)
		}
		return d, nil
	}
	if d := cfg.TodayDate(); !d.IsZero() {
		return d, nil
	}
	return model.DateOf(opts.now()), nil
}

func (s *session) setupLogger(stderr io.Writer, verbose, quiet bool) error {
	level, err := config.ParseLevel(s.cfg.LogLevel)
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = stderr
	switch {
	case s.cfg.LogFile != "":
		path, err := config.ExpandHome(s.cfg.LogFile)
		if err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		s.logFile = f
		w = f
	case quiet:
		s.log = slog.New(slog.DiscardHandler)
		return nil
	case !verbose:
		// Without --verbose the terminal only sees warnings.
		level = max(level, slog.LevelWarn)
	}
	s.log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return nil
}

// touch marks the state as changed so close persists it.
func (s *session) touch() {
	s.dirty = true
}

func (s *session) save(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := store.Save(ctx, s.backend, s.svc.State()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	s.dirty = false
	return nil
}

// close saves pending changes and releases the backend.
func (s *session) close(ctx context.Context) error {
	var err error
	if s.dirty {
		err = s.save(ctx)
	}
	if cerr := s.backend.Close(); err == nil && cerr != nil {
		err = cerr
	}
	s.closeLog()
	return err
}

func (s *session) closeLog() {
	if s.logFile != nil {
		_ = s.logFile.Close()
		s.logFile = nil
	}
}

// withSession runs fn inside a session and persists when fn marked it dirty.
func withSession(cmd *cobra.Command, opts *options, fn func(s *session) error) error {
	s, err := openSession(cmd, opts, false)
	if err != nil {
		return err
	}
	runErr := fn(s)
	if err := s.close(cmd.Context()); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// printEffects reports a points change and any unlocked achievements.
func (s *session) printEffects(delta int, unlocked []model.Achievement) {
	if d := ui.Delta(delta); d != "" {
		s.printf("%s %s (balance %d)\n", ui.Gold.Render(ui.IconPoints), d, s.svc.Points())
	}
	for _, a := range unlocked {
		s.printf("%s %s %s\n", ui.Gold.Render(ui.IconTrophy), ui.Gold.Render("Achievement unlocked:"), a.Title)
	}
}
