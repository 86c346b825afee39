package config

import (
	"github.com/spf13/viper"

	"github.com/metrico/dvgrouper/metadata"
	"github.com/metrico/dvgrouper/model"
	"github.com/metrico/dvgrouper/names"
	"github.com/metrico/dvgrouper/pathspec"
)

func setDefaults() {
	viper.SetDefault("engine", string(model.EngineArrow))
	viper.SetDefault("paths", []string{})
	viper.SetDefault("expected_files", []string{})
	viper.SetDefault("ignore_file", "")
	viper.SetDefault("schemas_file", "")
	viper.SetDefault("formats", []string{string(model.FormatParquet)})
	viper.SetDefault("ignore_regex", pathspec.DefaultIgnoreRegex)
	viper.SetDefault("size_unit", string(model.SizeMB))
	viper.SetDefault("size_mode", string(model.SizeModeTotal))
	viper.SetDefault("year_columns", metadata.DefaultYearColumns)
	viper.SetDefault("name_prefixes", names.DefaultPrefixes)
	viper.SetDefault("workers", 1)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("http.host", "0.0.0.0")
	viper.SetDefault("http.port", 8123)
	viper.SetDefault("duckdb.path", "")
	viper.SetDefault("s3.endpoint", "")
	viper.SetDefault("s3.key", "")
	viper.SetDefault("s3.secret", "")
	viper.SetDefault("s3.region", "")
	viper.SetDefault("s3.secure", true)
	viper.SetDefault("s3.staging_dir", "")
}

// Validate rejects bad literals before anything is loaded.
func (c *Configuration) Validate() error {
	if _, err := model.ParseEngine(c.Engine); err != nil {
		return err
	}
	if _, err := model.ParseFileFormats(c.Formats); err != nil {
		return err
	}
	if _, err := pathspec.CompileIgnore(c.IgnoreRegex); err != nil {
		return err
	}
	if _, err := model.ParseSizeUnit(c.SizeUnit); err != nil {
		return err
	}
	if _, err := model.ParseSizeMode(c.SizeMode); err != nil {
		return err
	}
	return nil
}

func (c *Configuration) DescribeOptions() metadata.Options {
	unit, _ := model.ParseSizeUnit(c.SizeUnit)
	mode, _ := model.ParseSizeMode(c.SizeMode)
	return metadata.Options{
		YearColumns: c.YearColumns,
		SizeUnit:    unit,
		SizeMode:    mode,
	}
}
