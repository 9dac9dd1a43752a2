package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "captain")
	path := writeConfig(t, "name: ${SAMPLE_NAME}\ncount: 2\n")

	var s sample
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "captain" || s.Count != 2 {
		t.Errorf("loaded = %+v", s)
	}
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, "name: x\ncuont: 2\n")
	var s sample
	if err := Load(path, &s); err == nil || !strings.Contains(err.Error(), "cuont") {
		t.Errorf("err = %v, want unknown field error", err)
	}
}

func TestLoad_Validates(t *testing.T) {
	path := writeConfig(t, "count: -1\n")
	var s sample
	if err := Load(path, &s); err == nil || !strings.Contains(err.Error(), "validation") {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "")
	s := sample{Name: "default"}
	if err := Load(path, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "default" {
		t.Errorf("name = %q", s.Name)
	}
}
