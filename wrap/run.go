// Package wrap applies :hover guards to stylesheet files in a directory tree.
package wrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"hoverguard/config"
	"hoverguard/state"
	"hoverguard/walk"
)

// Summary accumulates results of processing a tree.
type Summary struct {
	Inspected int
	Modified  int
	Wrapped   int
	Skipped   int
	Failed    int
}

func (s *Summary) add(r Result) {
	s.Inspected++
	s.Wrapped += r.Wrapped
	if r.Modified {
		s.Modified++
	}
	if r.Skipped {
		s.Skipped++
	}
}

// Run is the action of "wrap" command.
func Run(ctx context.Context, cmd *cli.Command) error {
	_, err := execute(ctx, cmd, cmd.Bool("dry-run"), "wrap")
	return err
}

// Check is the action of "check" command. It never writes and fails when any
// file needs guards.
func Check(ctx context.Context, cmd *cli.Command) error {
	sum, err := execute(ctx, cmd, true, "check")
	if err != nil {
		return err
	}
	if sum.Modified > 0 {
		return fmt.Errorf("%d file(s) have unguarded :hover blocks", sum.Modified)
	}
	return nil
}

func execute(ctx context.Context, cmd *cli.Command, dryRun bool, name string) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named(name)

	root, err := resolveRoot(cmd.Args().Get(0))
	if err != nil {
		return Summary{}, err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many roots", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	// command line takes precedence over configuration
	cfg := env.Cfg.Processing
	if exts := cmd.StringSlice("ext"); len(exts) > 0 {
		cfg.Extensions = exts
	}
	cfg.Exclude = append(append([]string{}, cfg.Exclude...), cmd.StringSlice("exclude")...)
	if cmd.Bool("fail-fast") {
		cfg.OnError = config.OnErrorAbort
	}
	if cmd.Bool("backup") {
		cfg.Backup = true
	}
	env.DryRun = dryRun

	log.Info("Processing starting", zap.String("root", root), zap.Strings("extensions", cfg.Extensions),
		zap.Bool("dry-run", dryRun), zap.String("run", env.RunID))

	var sum Summary
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)),
			zap.Int("inspected", sum.Inspected), zap.Int("modified", sum.Modified),
			zap.Int("wrapped", sum.Wrapped), zap.Int("skipped", sum.Skipped), zap.Int("failed", sum.Failed))
	}(time.Now())

	sum, err = process(ctx, root, &cfg, env.Rpt, env.DryRun, log)
	return sum, err
}

// resolveRoot returns absolute path of the tree to process. Without explicit
// root directory containing running executable is used.
func resolveRoot(arg string) (string, error) {
	if len(arg) == 0 {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("unable to locate executable: %w", err)
		}
		if exe, err = filepath.EvalSymlinks(exe); err != nil {
			return "", fmt.Errorf("unable to locate executable: %w", err)
		}
		arg = filepath.Dir(exe)
	}
	root, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("input root was not found: %w", err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("input root is not a directory (%s)", root)
	}
	return root, nil
}

// process walks the tree and handles every matching file independently of CLI
// framework. Depending on configured policy per-file errors either stop
// processing or are collected and returned together at the end.
func process(ctx context.Context, root string, cfg *config.ProcessingConfig, rpt *config.Report, dryRun bool, log *zap.Logger) (Summary, error) {
	var (
		sum  Summary
		errs error
	)

	p, err := NewProcessor(cfg, rpt, dryRun, log)
	if err != nil {
		return sum, err
	}

	opts := walk.Options{
		Extensions: cfg.Extensions,
		Exclude:    cfg.Exclude,
		OnError: func(path string, err error) error {
			log.Warn("Skipping directory", zap.String("dir", path), zap.Error(err))
			if cfg.FailFast() {
				return err
			}
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			return nil
		},
	}

	err = walk.Walk(ctx, root, opts, func(path, rel string) error {
		res, err := p.File(path, rel)
		if err != nil {
			sum.Failed++
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			if cfg.FailFast() {
				return fmt.Errorf("%s: %w", path, err)
			}
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
			return nil
		}
		sum.add(res)
		return nil
	})
	if err != nil {
		return sum, err
	}

	if sum.Inspected == 0 && errs == nil {
		log.Debug("Nothing to process", zap.String("root", root))
	}
	if errs != nil {
		return sum, fmt.Errorf("%d path(s) could not be processed: %w", len(multierr.Errors(errs)), errs)
	}
	return sum, nil
}
