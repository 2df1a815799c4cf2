package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/Abduluthman/quail/internal/config"
	"github.com/Abduluthman/quail/internal/markdown"
	"github.com/Abduluthman/quail/internal/model"
	"github.com/Abduluthman/quail/internal/post"
	"github.com/Abduluthman/quail/internal/web"
)

var cfgFile string
var appConfig config.Config
var siteData model.SiteData

var rootCmd = &cobra.Command{
	Use:   "quail",
	Short: "Quail - a tiny Markdown blog engine",
	Long: `Quail reads Markdown posts with YAML front matter from a directory and
serves them as a blog, or exports the blog as a static site.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func initializeConfig(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("siteTitle", "Quail Blog")
	v.SetDefault("baseURL", "")
	v.SetDefault("postsDir", "posts")
	v.SetDefault("postExt", post.DefaultExt)
	v.SetDefault("layoutsDir", "layouts")
	v.SetDefault("staticDir", "static")
	v.SetDefault("outputDir", "public")
	v.SetDefault("codeStyle", markdown.DefaultCodeStyle)
	v.SetDefault("addr", ":5000")
	v.SetDefault("logLevel", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("QUAIL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if cfgFile != "" {
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
	} else {
		configLoaded = true
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: appConfig.Level()})))
	if configLoaded {
		slog.Info("using config file", "path", v.ConfigFileUsed())
	} else {
		slog.Info("no config file found, using defaults and environment")
	}

	params := map[string]interface{}{}
	if configLoaded {
		var err error
		if params, err = loadSiteParams(v.ConfigFileUsed()); err != nil {
			return err
		}
	}
	siteData = model.SiteData{
		Title:   appConfig.SiteTitle,
		BaseURL: strings.TrimSuffix(appConfig.BaseURL, "/"),
		Params:  params,
	}
	return nil
}

// flagKeys maps command flags onto config keys so a flag wins over file and environment.
var flagKeys = map[string]string{
	"addr":       "addr",
	"posts-dir":  "postsDir",
	"output-dir": "outputDir",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// loadSiteParams reads the free-form params block for templates. Viper lowercases
// map keys, so the block is decoded straight from the file to keep the author's casing.
func loadSiteParams(path string) (map[string]interface{}, error) {
	if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
		return map[string]interface{}{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var doc struct {
		Params map[string]interface{} `yaml:"params"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("error unmarshalling params in %s: %w", path, err)
	}
	if doc.Params == nil {
		doc.Params = map[string]interface{}{}
	}
	return doc.Params, nil
}

// newRepository wires the post repository the same way for every command.
func newRepository(cfg config.Config) *post.Repository {
	return post.NewRepository(cfg.PostsDir, cfg.PostExt, markdown.New(cfg.CodeStyle))
}

func newTemplates(cfg config.Config) (*web.Templates, error) {
	tpl, err := web.LoadTemplates(cfg.LayoutsDir)
	if err != nil {
		return nil, fmt.Errorf("load layouts: %w", err)
	}
	return tpl, nil
}
