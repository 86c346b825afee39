package cmd

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/metrico/dvgrouper/config"
	"github.com/metrico/dvgrouper/frame"
	"github.com/metrico/dvgrouper/grouper"
	"github.com/metrico/dvgrouper/model"
	"github.com/metrico/dvgrouper/remote"
)

// grouperOptions maps the loaded configuration onto grouper options.
// Positional paths replace the configured ones.
func grouperOptions(cfg *config.Configuration, paths []string, logger zerolog.Logger) (grouper.Options, error) {
	engine, err := model.ParseEngine(cfg.Engine)
	if err != nil {
		return grouper.Options{}, err
	}
	formats, err := model.ParseFileFormats(cfg.Formats)
	if err != nil {
		return grouper.Options{}, err
	}
	if len(paths) == 0 {
		paths = cfg.Paths
	}
	opts := grouper.Options{
		Engine:        engine,
		Paths:         paths,
		ExpectedFiles: cfg.ExpectedFiles,
		Formats:       formats,
		IgnoreRegex:   cfg.IgnoreRegex,
		IgnoreFile:    cfg.IgnoreFile,
		Describe:      cfg.DescribeOptions(),
		NamePrefixes:  cfg.NamePrefixes,
		Workers:       cfg.Workers,
		DuckDB: frame.ReaderOptions{
			DuckDBPath:     cfg.DuckDB.Path,
			DuckDBSettings: cfg.DuckDB.Settings,
		},
		Logger: logger,
	}
	if cfg.S3.Endpoint != "" {
		fetcher, err := remote.NewS3Fetcher(remote.S3Config{
			Endpoint: cfg.S3.Endpoint,
			Key:      cfg.S3.Key,
			Secret:   cfg.S3.Secret,
			Region:   cfg.S3.Region,
			Secure:   cfg.S3.Secure,
		}, logger)
		if err != nil {
			return grouper.Options{}, err
		}
		opts.Remote = fetcher
		opts.StagingDir = cfg.S3.StagingDir
		if opts.StagingDir == "" {
			opts.StagingDir = filepath.Join(os.TempDir(), "dvgrouper")
		}
	}
	return opts, nil
}
