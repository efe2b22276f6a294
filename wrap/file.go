package wrap

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"hoverguard/config"
	"hoverguard/css"
	"hoverguard/hover"
)

// Result describes what happened to a single file.
type Result struct {
	Path string
	// Wrapped is number of guards added to the file.
	Wrapped int
	// Modified is set when file was (or in dry run would be) rewritten.
	Modified bool
	// Skipped is set when file was left alone because of unbalanced braces.
	Skipped bool
	// Unterminated is set when file ends inside a :hover block.
	Unterminated bool
}

// Processor reads stylesheet files, wraps :hover blocks and writes files back
// when anything changed.
type Processor struct {
	cfg     *config.ProcessingConfig
	codec   *codec
	checker *css.Checker
	rpt     *config.Report
	dryRun  bool
	log     *zap.Logger
}

// NewProcessor creates file processor. Report may be nil.
func NewProcessor(cfg *config.ProcessingConfig, rpt *config.Report, dryRun bool, log *zap.Logger) (*Processor, error) {
	c, err := newCodec(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		cfg:     cfg,
		codec:   c,
		checker: css.NewChecker(log),
		rpt:     rpt,
		dryRun:  dryRun,
		log:     log,
	}, nil
}

// File processes single file. "rel" is the path relative to the processed
// root and is used to name the file in debug report.
func (p *Processor) File(path, rel string) (res Result, err error) {
	res.Path = path
	p.log.Info("Inspecting file", zap.String("file", path))

	info, err := os.Stat(path)
	if err != nil {
		return res, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("unable to read file: %w", err)
	}
	if kind := binaryKind(data); kind != "" {
		return res, fmt.Errorf("%w: looks like %s", ErrBinary, kind)
	}

	text, bom, err := p.codec.decode(data)
	if err != nil {
		return res, err
	}

	if p.cfg.CheckBalance {
		if b := p.checker.Check([]byte(text), path); !b.Balanced() {
			p.log.Warn("Unbalanced braces", zap.String("file", path),
				zap.Int("unclosed", b.Depth), zap.Int("stray_line", b.StrayLine))
			if p.cfg.SkipUnbalanced {
				res.Skipped = true
				return res, nil
			}
		}
	}

	out := hover.Fold(hover.SplitLines(text))
	res.Wrapped, res.Unterminated = out.Wrapped, out.Unterminated
	if out.Unterminated {
		p.log.Warn("File ends inside :hover block, block left as is", zap.String("file", path))
	}
	if !out.Modified {
		p.log.Debug("Nothing to wrap", zap.String("file", path))
		return res, nil
	}
	res.Modified = true

	if p.dryRun {
		p.log.Info("File would be modified", zap.String("file", path), zap.Int("wrapped", out.Wrapped))
		return res, nil
	}

	encoded, err := p.codec.encode(hover.JoinLines(out.Lines), bom)
	if err != nil {
		return res, err
	}

	if err := p.rpt.StoreCopy(filepath.ToSlash(filepath.Join("original", rel)), path); err != nil {
		p.log.Debug("Unable to store original in report", zap.String("file", path), zap.Error(err))
	}
	if p.cfg.Backup {
		backup := path + p.cfg.BackupSuffix
		if err := os.WriteFile(backup, data, info.Mode().Perm()); err != nil {
			return res, fmt.Errorf("unable to write backup: %w", err)
		}
		p.log.Debug("Original saved", zap.String("backup", backup))
	}
	if err := replaceFile(path, encoded, info.Mode().Perm()); err != nil {
		return res, err
	}

	p.log.Info("Modified file", zap.String("file", path), zap.Int("wrapped", out.Wrapped))
	return res, nil
}

// replaceFile writes data next to the target and renames it over, so target is
// never left half written.
func replaceFile(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("unable to write file: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("unable to set file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("unable to write file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("unable to replace file: %w", err)
	}
	return nil
}
