package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/markdownfeeds/internal/feed"
	"github.com/starford/markdownfeeds/internal/generator"
	"github.com/starford/markdownfeeds/internal/watch"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatHTML = "html"
)

// DefaultConfigFile is read when no config path is given.
const DefaultConfigFile = "markdownfeeds.yaml"

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Feeds []FeedConfig      `yaml:"feeds"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if len(c.Feeds) == 0 {
		return errors.New("feeds: at least one feed is required")
	}
	seen := make(map[string]struct{}, len(c.Feeds))
	for i := range c.Feeds {
		f := &c.Feeds[i]
		if err := f.Validate(); err != nil {
			return fmt.Errorf("feeds[%d]: %w", i, err)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("feeds[%d]: duplicate name %q", i, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// ResolvePaths makes relative source, target and template paths relative to
// base, usually the directory of the config file.
func (c *Config) ResolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i := range c.Feeds {
		f := &c.Feeds[i]
		f.Settings.SourceDirectory = resolve(f.Settings.SourceDirectory)
		f.Settings.TargetDirectory = resolve(f.Settings.TargetDirectory)
		f.Template = resolve(f.Template)
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level  `yaml:"log_level"`
	Workers  int         `yaml:"workers"`
	HTTP     HTTPConfig  `yaml:"http"`
	Watch    WatchConfig `yaml:"watch"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Workers, validation.Min(0)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// WatchConfig holds the source watcher configuration.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// FeedConfig describes one generated feed.
type FeedConfig struct {
	Name           string             `yaml:"name"`
	Format         string             `yaml:"format"`
	Template       string             `yaml:"template"`
	Sort           string             `yaml:"sort"`
	SummaryLength  int                `yaml:"summary_length"`
	IncludeContent bool               `yaml:"include_content"`
	Settings       generator.Settings `yaml:"settings"`
	Metadata       MetadataConfig     `yaml:"metadata"`
}

// Validate validates the feed configuration.
func (c *FeedConfig) Validate() error {
	if c.Format == "" {
		c.Format = FormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Format, validation.Required, validation.In(FormatJSON, FormatHTML)),
		validation.Field(&c.Sort, validation.In(generator.SortDateDesc, generator.SortDateAsc, generator.SortTitle)),
		validation.Field(&c.SummaryLength, validation.Min(0)),
	); err != nil {
		return err
	}
	if c.Format == FormatJSON && c.Template != "" {
		return errors.New("template: only used by the html format")
	}
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if err := c.Metadata.Validate(); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	return nil
}

// MetadataConfig is the feed level metadata merged into every page.
type MetadataConfig struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	HomePageURL string         `yaml:"home_page_url"`
	Icon        string         `yaml:"icon"`
	Favicon     string         `yaml:"favicon"`
	UserComment string         `yaml:"user_comment"`
	Author      *AuthorConfig  `yaml:"author"`
	Hubs        []HubConfig    `yaml:"hubs"`
	Extra       map[string]any `yaml:"extra"`
}

// Validate validates the metadata URLs and nested records.
func (c *MetadataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HomePageURL, is.URL),
		validation.Field(&c.Icon, is.URL),
		validation.Field(&c.Favicon, is.URL),
		validation.Field(&c.Author),
		validation.Field(&c.Hubs),
	)
}

// Feed converts the metadata into a feed record.
func (c *MetadataConfig) Feed() *feed.Feed {
	f := feed.NewJSONFeed()
	f.InjectValues(c.Extra)
	f.SetTitle(c.Title)
	f.SetDescription(c.Description)
	f.SetHomePageURL(c.HomePageURL)
	f.SetIcon(c.Icon)
	f.SetFavicon(c.Favicon)
	if c.UserComment != "" {
		f.Set(feed.KeyUserComment, c.UserComment)
	}
	if c.Author != nil {
		f.SetAuthor(feed.NewAuthor(c.Author.Name, c.Author.URL, c.Author.Avatar))
	}
	hubs := make([]*feed.Hub, 0, len(c.Hubs))
	for _, h := range c.Hubs {
		hubs = append(hubs, feed.NewHub(h.Type, h.URL))
	}
	f.SetHubs(hubs)
	return f
}

// AuthorConfig is the feed author.
type AuthorConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Avatar string `yaml:"avatar"`
}

// Validate requires at least one of the fields.
func (c AuthorConfig) Validate() error {
	if c.Name == "" && c.URL == "" && c.Avatar == "" {
		return errors.New("one of name, url or avatar is required")
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.URL, is.URL),
		validation.Field(&c.Avatar, is.URL),
	)
}

// HubConfig is a subscription hub.
type HubConfig struct {
	Type string `yaml:"type"`
	URL  string `yaml:"url"`
}

// Validate validates the hub.
func (c HubConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Type, validation.Required),
		validation.Field(&c.URL, validation.Required, is.URL),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			Watch: WatchConfig{
				Debounce: watch.DefaultDebounce,
			},
		},
	}
}
