package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/markdownfeeds/internal/apperr"
)

// DefaultTargetDirName is the target directory created under the working
// directory when none is configured.
const DefaultTargetDirName = "feed"

// Settings configures one generator run.
type Settings struct {
	SourceDirectory string         `yaml:"source_directory"`
	TargetDirectory string         `yaml:"target_directory"`
	ItemsPerExport  int            `yaml:"feed_items_per_export"`
	SkipFiles       []string       `yaml:"skip_files"`
	FeedBaseURL     string         `yaml:"feed_base_url"`
	Extra           map[string]any `yaml:"extra"`
}

// Validate validates the settings.
func (s *Settings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.ItemsPerExport, validation.Min(0)),
		validation.Field(&s.FeedBaseURL, is.URL),
		validation.Field(&s.SkipFiles, validation.Each(validation.Required)),
	)
}

// withDefaults fills the source (working directory) and target
// (working directory/feed) when unset and trims trailing separators.
func (s Settings) withDefaults() (Settings, error) {
	if s.SourceDirectory == "" || s.TargetDirectory == "" {
		wd, err := os.Getwd()
		if err != nil {
			return s, fmt.Errorf("%w: working directory: %w", apperr.ErrConfiguration, err)
		}
		if s.SourceDirectory == "" {
			s.SourceDirectory = wd
		}
		if s.TargetDirectory == "" {
			s.TargetDirectory = filepath.Join(wd, DefaultTargetDirName)
		}
	}
	s.SourceDirectory = trimSeparator(s.SourceDirectory)
	s.TargetDirectory = trimSeparator(s.TargetDirectory)
	s.SkipFiles = slices.Clone(s.SkipFiles)
	return s, nil
}

// Skips reports whether a file with the given base name is excluded.
func (s Settings) Skips(name string) bool {
	return slices.Contains(s.SkipFiles, name)
}

// BaseURL returns the feed base URL without a trailing slash.
func (s Settings) BaseURL() string {
	return strings.TrimRight(s.FeedBaseURL, "/")
}

// Get returns an extra option.
func (s Settings) Get(key string) (any, bool) {
	v, ok := s.Extra[key]
	return v, ok
}

func trimSeparator(p string) string {
	trimmed := strings.TrimRight(p, `/\`)
	if trimmed == "" {
		return p
	}
	return trimmed
}
