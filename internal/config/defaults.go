package config

import "path/filepath"

const (
	defaultConfigPath    = "~/.config/cdlconvert/config.toml"
	projectConfigName    = "cdlconvert.toml"
	outputDirEnv         = "CDLCONVERT_OUTPUT_DIR"
	defaultOutputDir     = "."
	defaultOutputFormat  = "ccc"
	defaultPrecision     = -1
	defaultInputEncoding = "utf-8"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultHistoryName   = "history.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    filepath.Join(dataDir, "logs"),
		},
		Convert: Convert{
			OutputFormats: []string{defaultOutputFormat},
			Precision:     defaultPrecision,
			InputEncoding: defaultInputEncoding,
			LockOutputDir: true,
		},
		History: History{
			Enabled: true,
			Path:    filepath.Join(dataDir, defaultHistoryName),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
