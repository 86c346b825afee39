package config

import (
	"strings"

	"github.com/spf13/viper"
)

type DuckDBConfiguration struct {
	Path     string            `json:"path" mapstructure:"path" default:""`
	Settings map[string]string `json:"settings" mapstructure:"settings"`
}

type HTTPConfiguration struct {
	Host string `json:"host" mapstructure:"host" default:"0.0.0.0"`
	Port int    `json:"port" mapstructure:"port" default:"8123"`
}

type S3Configuration struct {
	Endpoint   string `json:"endpoint" mapstructure:"endpoint" default:""`
	Key        string `json:"key" mapstructure:"key" default:""`
	Secret     string `json:"secret" mapstructure:"secret" default:""`
	Region     string `json:"region" mapstructure:"region" default:""`
	Secure     bool   `json:"secure" mapstructure:"secure" default:"true"`
	StagingDir string `json:"staging_dir" mapstructure:"staging_dir" default:""`
}

type Configuration struct {
	Engine        string              `json:"engine" mapstructure:"engine" default:"arrow"`
	Paths         []string            `json:"paths" mapstructure:"paths"`
	ExpectedFiles []string            `json:"expected_files" mapstructure:"expected_files"`
	Formats       []string            `json:"formats" mapstructure:"formats" default:".parquet"`
	IgnoreRegex   string              `json:"ignore_regex" mapstructure:"ignore_regex"`
	IgnoreFile    string              `json:"ignore_file" mapstructure:"ignore_file" default:""`
	SizeUnit      string              `json:"size_unit" mapstructure:"size_unit" default:"MB"`
	SizeMode      string              `json:"size_mode" mapstructure:"size_mode" default:"total"`
	YearColumns   []string            `json:"year_columns" mapstructure:"year_columns"`
	NamePrefixes  []string            `json:"name_prefixes" mapstructure:"name_prefixes"`
	Workers       int                 `json:"workers" mapstructure:"workers" default:"1"`
	SchemasFile   string              `json:"schemas_file" mapstructure:"schemas_file" default:""`
	LogLevel      string              `json:"log_level" mapstructure:"log_level" default:"info"`
	DuckDB        DuckDBConfiguration `json:"duckdb" mapstructure:"duckdb"`
	HTTP          HTTPConfiguration   `json:"http" mapstructure:"http"`
	S3            S3Configuration     `json:"s3" mapstructure:"s3"`
}

var Config *Configuration

// InitConfig reads file, when given, over the defaults. Environment
// variables such as DVGROUPER_S3_ENDPOINT override both.
func InitConfig(file string) error {
	setDefaults()
	viper.SetEnvPrefix("DVGROUPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}
	cfg := &Configuration{}
	if err := viper.Unmarshal(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	Config = cfg
	return nil
}
