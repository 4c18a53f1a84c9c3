// Package config loads semdex configuration with the usual precedence:
// defaults, then .semdex/config.yml, then SEMDEX_* environment variables.
package config

// Config is the full semdex configuration.
type Config struct {
	// Sourceroot is the directory document URIs are made relative to.
	// Defaults to the indexed root.
	Sourceroot string `mapstructure:"sourceroot"`

	// IncludeText embeds the full source text in every document.
	IncludeText bool `mapstructure:"include_text"`

	// OutputDir is where JSON documents are written, relative to the
	// indexed root unless absolute.
	OutputDir string `mapstructure:"output_dir"`

	// DBPath enables SQLite persistence when non-empty.
	DBPath string `mapstructure:"db_path"`

	// Include and Ignore are glob patterns over slash-separated paths
	// relative to the indexed root.
	Include []string `mapstructure:"include"`
	Ignore  []string `mapstructure:"ignore"`

	// Workers is the indexing worker pool size.
	Workers int `mapstructure:"workers"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir: ".semdex/index",
		Include:   []string{"**/*.java"},
		Ignore: []string{
			"build/**",
			"target/**",
			".git/**",
		},
		Workers: 4,
	}
}
