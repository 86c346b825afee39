// Package grouper builds the dataset container: it filters the requested
// paths against the expected files, loads them and exposes the datasets
// by name.
package grouper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/metrico/dvgrouper/frame"
	"github.com/metrico/dvgrouper/loader"
	"github.com/metrico/dvgrouper/metadata"
	"github.com/metrico/dvgrouper/model"
	"github.com/metrico/dvgrouper/names"
	"github.com/metrico/dvgrouper/pathspec"
	"github.com/metrico/dvgrouper/remote"
)

var ErrMissingFiles = errors.New("expected files missing")

type MissingFilesError struct {
	Missing []string
}

func (e *MissingFilesError) Is(target error) bool { return target == ErrMissingFiles }

func (e *MissingFilesError) Error() string {
	return fmt.Sprintf("%d expected files missing from the provided paths: %s",
		len(e.Missing), strings.Join(e.Missing, ", "))
}

type Options struct {
	Engine        model.Engine
	Paths         []string
	ExpectedFiles []string
	Formats       model.FileFormats
	IgnoreRegex   string
	IgnoreFile    string
	Describe      metadata.Options
	NamePrefixes  []string
	Workers       int
	DuckDB        frame.ReaderOptions
	// Reader overrides the reader selected by Engine.
	Reader frame.Reader
	// Remote resolves s3:// paths into StagingDir.
	Remote     *remote.S3Fetcher
	StagingDir string
	Logger     zerolog.Logger
}

type Grouper struct {
	loadID     uuid.UUID
	groups     loader.Groups
	datasets   map[string]*loader.Entry
	names      []string
	paths      []string
	unexpected []string
	reader     frame.Reader
	ownReader  bool
	logger     zerolog.Logger
}

// New loads every dataset of opts.Paths. It fails without partial results.
func New(ctx context.Context, opts Options) (*Grouper, error) {
	validator, err := pathspec.New(opts.Formats, opts.IgnoreRegex, pathspec.WithIgnoreFile(opts.IgnoreFile))
	if err != nil {
		return nil, err
	}

	g := &Grouper{
		loadID:   uuid.New(),
		groups:   loader.Groups{},
		datasets: map[string]*loader.Entry{},
		logger:   opts.Logger,
	}

	g.paths, g.unexpected, err = filterExpected(opts.Paths, opts.ExpectedFiles, extensions(opts.Formats))
	if err != nil {
		g.logger.Error().Err(err).Msg("expected files missing")
		return nil, err
	}
	if len(g.unexpected) > 0 {
		g.logger.Warn().Int("count", len(g.unexpected)).Strs("files", g.unexpected).
			Msg("additional files provided vs. expected, filtering before loading")
	}

	local, err := g.resolveRemote(ctx, opts, g.paths)
	if err != nil {
		return nil, err
	}

	g.reader = opts.Reader
	if g.reader == nil {
		if g.reader, err = frame.NewReader(ctx, opts.Engine, opts.DuckDB); err != nil {
			return nil, err
		}
		g.ownReader = true
	}

	l := &loader.Loader{
		Reader:       g.reader,
		Validator:    validator,
		Describe:     opts.Describe,
		NamePrefixes: opts.NamePrefixes,
		Workers:      opts.Workers,
		Logger:       opts.Logger,
	}
	if err = l.Load(ctx, local, g.groups); err != nil {
		g.Close()
		return nil, err
	}
	g.index()
	g.logger.Info().Int("datasets", len(g.names)).Int("groups", len(g.groups)).
		Str("load_id", g.loadID.String()).Msg("datasets loaded")
	return g, nil
}

func extensions(formats model.FileFormats) []string {
	if formats.Empty() {
		return []string{string(model.FormatParquet), string(model.FormatCSV)}
	}
	return formats.List()
}

// filterExpected keeps the paths whose base name is expected. Every expected
// name must be given. Without expected names all paths are kept.
func filterExpected(paths, expected, exts []string) (kept, extra []string, err error) {
	kept = append([]string(nil), paths...)
	sort.Strings(kept)
	if len(expected) == 0 {
		return kept, nil, nil
	}

	want := map[string]bool{}
	for _, e := range expected {
		want[names.StandardBasename(e, exts)] = true
	}
	given := map[string]bool{}
	for _, p := range paths {
		given[names.StandardBasename(p, exts)] = true
	}

	var missing []string
	for e := range want {
		if !given[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, &MissingFilesError{Missing: missing}
	}

	kept = kept[:0]
	for _, p := range paths {
		if want[names.StandardBasename(p, exts)] {
			kept = append(kept, p)
		} else {
			extra = append(extra, p)
		}
	}
	sort.Strings(kept)
	sort.Strings(extra)
	return kept, extra, nil
}

func (g *Grouper) resolveRemote(ctx context.Context, opts Options, paths []string) ([]string, error) {
	res := make([]string, len(paths))
	for i, p := range paths {
		res[i] = p
		if !remote.IsRemote(p) {
			continue
		}
		if opts.Remote == nil {
			return nil, fmt.Errorf("%w: no s3 endpoint configured for %q", remote.ErrInvalidURL, p)
		}
		staging := opts.StagingDir
		if staging == "" {
			staging = os.TempDir()
		}
		local, err := opts.Remote.Fetch(ctx, p, staging)
		if err != nil {
			return nil, err
		}
		res[i] = local
	}
	return res, nil
}

// index flattens the groups by dataset name. When several groups hold the
// same name, the group sorting last wins; Lookup still returns all of them.
func (g *Grouper) index() {
	for _, group := range g.groups.GroupNames() {
		for name, e := range g.groups[group] {
			if prev, ok := g.datasets[name]; ok {
				g.logger.Warn().Str("dataset", name).Str("group", group).Str("shadowed_group", prev.Group).
					Msg("dataset name found in several groups, keeping the last")
			}
			g.datasets[name] = e
		}
	}
	g.names = g.groups.Names()
}

func (g *Grouper) LoadID() string { return g.loadID.String() }

// Datasets returns the sorted dataset names.
func (g *Grouper) Datasets() []string {
	return append([]string(nil), g.names...)
}

func (g *Grouper) Dataset(name string) (*loader.Entry, bool) {
	e, ok := g.datasets[name]
	return e, ok
}

// Lookup returns every entry called name, ordered by group.
func (g *Grouper) Lookup(name string) []*loader.Entry {
	return g.groups.Lookup(name)
}

func (g *Grouper) Frame(name string) (*frame.Frame, bool) {
	e, ok := g.datasets[name]
	if !ok {
		return nil, false
	}
	return e.Frame(), true
}

// Metadata returns the metadata of every dataset without frames.
func (g *Grouper) Metadata() map[string]metadata.Data {
	res := make(map[string]metadata.Data, len(g.datasets))
	for name, e := range g.datasets {
		res[name] = e.Metadata()
	}
	return res
}

func (g *Grouper) Groups() loader.Groups { return g.groups }

// Paths returns the input paths kept after expected-file filtering.
func (g *Grouper) Paths() []string { return append([]string(nil), g.paths...) }

// Unexpected returns the given paths dropped because they were not expected.
func (g *Grouper) Unexpected() []string { return append([]string(nil), g.unexpected...) }

// Close releases the frames, and the reader when New created it.
func (g *Grouper) Close() error {
	g.groups.Release()
	if g.ownReader && g.reader != nil {
		return g.reader.Close()
	}
	return nil
}
