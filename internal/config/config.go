package config

import "log/slog"

type Config struct {
	SiteTitle  string `mapstructure:"siteTitle"`
	BaseURL    string `mapstructure:"baseURL"`
	PostsDir   string `mapstructure:"postsDir"`
	PostExt    string `mapstructure:"postExt"`
	LayoutsDir string `mapstructure:"layoutsDir"`
	StaticDir  string `mapstructure:"staticDir"`
	OutputDir  string `mapstructure:"outputDir"`
	CodeStyle  string `mapstructure:"codeStyle"`
	Addr       string `mapstructure:"addr"`
	LogLevel   string `mapstructure:"logLevel"`
}

// Level maps LogLevel onto a slog level, falling back to info.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
