// Package config loads the service configuration from YAML, an optional env
// file and the process environment, in increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as "90s" or "2m" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("value.Decode failed: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("time.ParseDuration failed: %w", err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config is the complete service configuration.
type Config struct {
	HTTPAddr string `yaml:"http_addr"`
	// BaseURL prefixes download links; empty uses the listen address.
	BaseURL  string   `yaml:"base_url"`
	Log      Log      `yaml:"log"`
	Render   Render   `yaml:"render"`
	Compiler Compiler `yaml:"compiler"`
	Output   Output   `yaml:"output"`
	Drive    Drive    `yaml:"drive"`
}

// Log selects logger output.
type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// Render tunes classification and page layout.
type Render struct {
	MaxTableColumns int      `yaml:"max_table_columns"`
	NotesKeywords   []string `yaml:"notes_keywords"`
	PageSize        string   `yaml:"page_size"`
	Margin          float64  `yaml:"margin"`
	// Markup disables the LaTeX backend when false.
	Markup bool `yaml:"markup"`
	// TemplateDir holds the templates requests may name. Empty disables
	// templates.
	TemplateDir string `yaml:"template_dir"`
	// RawLaTeX compiles complete LaTeX documents without escaping them.
	RawLaTeX bool `yaml:"raw_latex"`
}

// Compiler configures the external LaTeX toolchain.
type Compiler struct {
	// Path is an explicit executable, probed before KnownPaths and PATH.
	Path          string   `yaml:"path"`
	Name          string   `yaml:"name"`
	KnownPaths    []string `yaml:"known_paths"`
	ScratchDir    string   `yaml:"scratch_dir"`
	Timeout       Duration `yaml:"timeout"`
	MaxConcurrent int64    `yaml:"max_concurrent"`
}

// Output is the local artifact directory.
type Output struct {
	Dir string `yaml:"dir"`
}

// Drive configures uploads to Google Drive.
type Drive struct {
	Enabled   bool   `yaml:"enabled"`
	FolderID  string `yaml:"folder_id"`
	TokenFile string `yaml:"token_file"`
	// ClientID and ClientSecret only come from the environment.
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr: "localhost:0",
		Log:      Log{Level: "info"},
		Render: Render{
			MaxTableColumns: 12,
			PageSize:        "A4",
			Margin:          72,
			Markup:          true,
			TemplateDir:     "./data/templates",
		},
		Compiler: Compiler{
			Name:          "pdflatex",
			ScratchDir:    filepath.Join(os.TempDir(), "examdoc", "scratch"),
			Timeout:       Duration(60 * time.Second),
			MaxConcurrent: 2,
		},
		Output: Output{Dir: "./data/exams"},
		Drive:  Drive{TokenFile: "./data/examdoc-drive-token.json"},
	}
}

// Environment variables that override the file.
const (
	EnvScratchDir      = "EXAMDOC_SCRATCH_DIR"
	EnvOutputDir       = "EXAMDOC_OUTPUT_DIR"
	EnvTemplateDir     = "EXAMDOC_TEMPLATE_DIR"
	EnvCompiler        = "EXAMDOC_COMPILER"
	EnvCompilerTimeout = "EXAMDOC_COMPILER_TIMEOUT"
	EnvMaxCompilers    = "EXAMDOC_MAX_COMPILERS"
	EnvDriveFolderID   = "EXAMDOC_DRIVE_FOLDER_ID"
	EnvClientID        = "OAUTH_GOOGLE_CLIENT_ID"
	EnvClientSecret    = "OAUTH_GOOGLE_CLIENT_SECRET"
)

// Load builds the configuration: defaults, then the YAML file at path, then
// the env file, then the environment. Empty paths are skipped.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("os.ReadFile failed: %w", err)
		}
		if err := Decode(b, &cfg); err != nil {
			return Config{}, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("godotenv.Load failed: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode merges YAML into cfg. Unknown keys are rejected.
func Decode(b []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("yaml.Decode failed: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg from lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvScratchDir); ok && v != "" {
		c.Compiler.ScratchDir = v
	}
	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		c.Output.Dir = v
	}
	if v, ok := lookup(EnvTemplateDir); ok {
		c.Render.TemplateDir = v
	}
	if v, ok := lookup(EnvCompiler); ok && v != "" {
		c.Compiler.Path = v
	}
	if v, ok := lookup(EnvCompilerTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: time.ParseDuration failed: %w", EnvCompilerTimeout, err)
		}
		c.Compiler.Timeout = Duration(d)
	}
	if v, ok := lookup(EnvMaxCompilers); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: strconv.ParseInt failed: %w", EnvMaxCompilers, err)
		}
		c.Compiler.MaxConcurrent = n
	}
	if v, ok := lookup(EnvDriveFolderID); ok && v != "" {
		c.Drive.FolderID = v
		c.Drive.Enabled = true
	}
	if v, ok := lookup(EnvClientID); ok {
		c.Drive.ClientID = v
	}
	if v, ok := lookup(EnvClientSecret); ok {
		c.Drive.ClientSecret = v
	}
	return nil
}

// Validate reports settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Compiler.Timeout <= 0 {
		errs = append(errs, errors.New("compiler.timeout must be positive"))
	}
	if c.Compiler.MaxConcurrent < 1 {
		errs = append(errs, errors.New("compiler.max_concurrent must be at least 1"))
	}
	if c.Render.MaxTableColumns < 0 {
		errs = append(errs, errors.New("render.max_table_columns must not be negative"))
	}
	if c.Render.Margin < 0 {
		errs = append(errs, errors.New("render.margin must not be negative"))
	}
	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir must be set"))
	}
	if dir := c.Render.TemplateDir; dir != "" {
		if within(dir, c.Compiler.ScratchDir) {
			errs = append(errs, errors.New("compiler.scratch_dir must not be inside render.template_dir"))
		}
		if within(dir, c.Output.Dir) {
			errs = append(errs, errors.New("output.dir must not be inside render.template_dir"))
		}
	}
	if c.Drive.Enabled && (c.Drive.ClientID == "" || c.Drive.ClientSecret == "") {
		errs = append(errs, fmt.Errorf("drive upload needs %s and %s", EnvClientID, EnvClientSecret))
	}
	return errors.Join(errs...)
}

// within reports whether path is dir or below it.
func within(dir, path string) bool {
	if path == "" {
		return false
	}
	d, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(d, p)
	return err == nil && filepath.IsLocal(rel)
}
