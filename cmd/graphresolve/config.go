package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "GRAPHRESOLVE"

type execConfig struct {
	Schema          string     `mapstructure:"schema"`
	Data            string     `mapstructure:"data"`
	Query           string     `mapstructure:"query"`
	Operation       string     `mapstructure:"operation"`
	Variables       string     `mapstructure:"variables"`
	Validate        bool       `mapstructure:"validate"`
	Introspection   bool       `mapstructure:"introspection"`
	ListConcurrency int        `mapstructure:"list-concurrency"`
	Pretty          bool       `mapstructure:"pretty"`
	Log             logConfig  `mapstructure:"log"`
	Otel            otelConfig `mapstructure:"otel"`
}

type logConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type otelConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Service  string `mapstructure:"service"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema", "")
	v.SetDefault("data", "")
	v.SetDefault("query", "")
	v.SetDefault("operation", "")
	v.SetDefault("variables", "")
	v.SetDefault("validate", false)
	v.SetDefault("introspection", true)
	v.SetDefault("list-concurrency", 1)
	v.SetDefault("pretty", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("otel.endpoint", "")
	v.SetDefault("otel.service", "graphresolve")
}

func defineExecFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "YAML config file")
	fs.String("schema", "", "GraphQL SDL file")
	fs.String("data", "", "JSON or YAML fixture")
	fs.String("query", "", "GraphQL query document")
	fs.String("operation", "", "Operation name")
	fs.String("variables", "", "Variable values as JSON")
	fs.Bool("validate", false, "Validate the query against the schema")
	fs.Bool("introspection", true, "Enable introspection")
	fs.Int("list-concurrency", 1, "List item concurrency")
	fs.Bool("pretty", false, "Pretty-print the result")
	fs.String("log.level", "info", "Log level")
	fs.String("log.format", "text", "Log format")
	fs.String("otel.endpoint", "", "OTLP collector endpoint")
	fs.String("otel.service", "graphresolve", "OpenTelemetry service name")
}

// loadExecConfig merges, from highest precedence: flags, environment,
// config file, defaults.
func loadExecConfig(args []string, stderr io.Writer) (*execConfig, error) {
	fs := pflag.NewFlagSet("exec", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	defineExecFlags(fs)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, execUsage)
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// only explicitly set flags override env and file values
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if f.Name == "config" || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(f.Name, f)
	})
	if bindErr != nil {
		return nil, bindErr
	}

	var cfg execConfig
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Schema == "" || cfg.Query == "" {
		fmt.Fprint(stderr, execUsage)
		return nil, fmt.Errorf("--schema and --query are required")
	}
	return &cfg, nil
}
