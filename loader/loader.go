// Package loader walks input paths and loads every accepted file into
// groups keyed by parent directory name.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/metrico/dvgrouper/frame"
	"github.com/metrico/dvgrouper/metadata"
	"github.com/metrico/dvgrouper/model"
	"github.com/metrico/dvgrouper/names"
	"github.com/metrico/dvgrouper/pathspec"
)

var ErrDuplicateDataset = errors.New("duplicate dataset")

type Loader struct {
	Reader       frame.Reader
	Validator    *pathspec.Validator
	Describe     metadata.Options
	NamePrefixes []string
	// Workers bounds concurrent file reads. Zero reads one file at a time.
	Workers int
	Logger  zerolog.Logger
}

type job struct {
	group  string
	name   string
	path   string
	format model.FileFormat
}

// Load adds every dataset found under paths to groups. Nothing is added
// when any path fails.
func (l *Loader) Load(ctx context.Context, paths []string, groups Groups) error {
	jobs, err := l.plan(paths, groups)
	if err != nil {
		return err
	}

	frames := make([]*frame.Frame, len(jobs))
	release := func() {
		for _, f := range frames {
			if f != nil {
				f.Release()
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	workers := l.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, j := range jobs {
		g.Go(func() error {
			f, err := l.Reader.Read(gctx, j.path, j.format)
			if err != nil {
				return err
			}
			frames[i] = f
			l.Logger.Debug().Str("path", j.path).Int64("rows", f.NumRows()).
				Int("cols", f.NumCols()).Msg("file read")
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		release()
		return err
	}

	entries := make([]*Entry, len(jobs))
	for i, j := range jobs {
		if entries[i], err = l.entry(j, frames[i]); err != nil {
			release()
			return err
		}
	}
	for _, e := range entries {
		groups.put(e)
	}
	return nil
}

func (l *Loader) entry(j job, f *frame.Frame) (*Entry, error) {
	described, err := metadata.Describe(f, l.Describe, metadata.Data{
		metadata.KeyPath:   j.path,
		metadata.KeyFormat: string(j.format),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe %q: %w", j.path, err)
	}
	meta, err := metadata.Combine(metadata.Data{metadata.KeyData: f}, described)
	if err != nil {
		return nil, fmt.Errorf("failed to describe %q: %w", j.path, err)
	}
	if idx, ok := metadata.IndexCol(meta); ok {
		if err = f.SetIndex(idx); err != nil {
			return nil, err
		}
	}
	return &Entry{Group: j.group, Name: j.name, Meta: meta}, nil
}

// plan validates every path and lists the files to read in walk order.
func (l *Loader) plan(paths []string, groups Groups) ([]job, error) {
	var jobs []job
	planned := Groups{}
	add := func(path string, format model.FileFormat) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		j := job{
			group:  filepath.Base(filepath.Dir(abs)),
			path:   abs,
			format: format,
		}
		base := names.StandardBasename(abs, []string{string(format)})
		if j.name, err = names.DatasetName(base, l.NamePrefixes); err != nil {
			return fmt.Errorf("failed to name dataset %q: %w", abs, err)
		}
		for _, g := range []Groups{groups, planned} {
			if e, ok := g.entry(j.group, j.name); ok {
				if e.Path() == abs {
					l.Logger.Debug().Str("path", abs).Msg("file already loaded")
					return nil
				}
				return fmt.Errorf("%w: %q in group %q from %q and %q",
					ErrDuplicateDataset, j.name, j.group, e.Path(), abs)
			}
		}
		planned.put(&Entry{Group: j.group, Name: j.name, Meta: metadata.Data{metadata.KeyPath: abs}})
		jobs = append(jobs, j)
		return nil
	}

	for _, p := range paths {
		spec, err := l.Validator.Validate(p)
		if err != nil {
			return nil, err
		}
		l.Logger.Debug().Str("path", p).Stringer("kind", spec.Kind).Msg("path validated")

		switch spec.Kind {
		case pathspec.KindFile:
			format, ok := model.FormatOf(p)
			if !ok {
				return nil, fmt.Errorf("%w: cannot read %q", model.ErrInvalidFormat, p)
			}
			if err = add(p, format); err != nil {
				return nil, err
			}
		case pathspec.KindDir:
			err = pathspec.Walk(p, func(path string, mode fs.FileMode) error {
				if !mode.IsRegular() || l.Validator.Ignored(p, path) {
					return nil
				}
				format, ok := model.FormatOf(path)
				if !ok {
					l.Logger.Debug().Str("path", path).Msg("skipping file of unknown format")
					return nil
				}
				if f := l.Validator.Formats(); !f.Empty() && !f.Has(path) {
					return nil
				}
				return add(path, format)
			})
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %q", pathspec.ErrUnsupportedPathKind, p)
		}
	}
	return jobs, nil
}
