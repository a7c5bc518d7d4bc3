// Package config holds the explicit build configuration passed to every
// pipeline stage.
//
// Values come from three layers, lowest precedence first: Default, the
// process environment (FromEnv) and command-line flags applied by the CLI.
// Validate must succeed before a Config is handed to the pipeline.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/wippyai/uringgen/errors"
)

// EnvPrefix prefixes every generator-specific environment variable.
const EnvPrefix = "URINGGEN_"

// Deterministic artifact names inside OutDir.
const (
	WrapperSourceName = "wrapper_extern.c"
	WrapperSourceDir  = "bindgen"
	ObjectName        = "wrapper_extern.o"
	DeclarationsName  = "bindings.h"
	DepfileName       = "bindings.d"
)

// Config is the complete input of one generator run.
type Config struct {
	// OutDir is the build-scoped output directory for every artifact.
	OutDir string `mapstructure:"OUT_DIR"`
	// SourceRoot is the directory of the consuming package. It is added to
	// the include search path and receives the cgo glue file.
	SourceRoot string `mapstructure:"SOURCE_ROOT"`
	// Header is the C header to bind, relative to SourceRoot unless absolute.
	Header string `mapstructure:"HEADER"`

	Library       string `mapstructure:"LIBRARY"`
	PkgConfigName string `mapstructure:"PKG_CONFIG_NAME"`
	ArchiveName   string `mapstructure:"ARCHIVE"`
	WrapperSuffix string `mapstructure:"SUFFIX"`

	Compiler     string   `mapstructure:"CC"`
	CFlags       []string `mapstructure:"CFLAGS"`
	Preprocessor string   `mapstructure:"CPP"`
	Archiver     string   `mapstructure:"AR"`
	ArFlags      string   `mapstructure:"AR_FLAGS"`
	PkgConfig    string   `mapstructure:"PKG_CONFIG"`

	SearchPaths    []string `mapstructure:"SEARCH_PATHS"`
	AllowFunctions string   `mapstructure:"ALLOW_FUNCTIONS"`

	// GoPackage enables the cgo glue file; go generate sets GOPACKAGE.
	GoPackage string `mapstructure:"GOPACKAGE"`
	GlueFile  string `mapstructure:"GLUE_FILE"`
	GOARCH    string `mapstructure:"GOARCH"`

	SkipProbe bool `mapstructure:"SKIP_PROBE"`
}

// Default returns a Config with every optional key set for liburing.
func Default() *Config {
	return &Config{
		Header:        "wrapper.h",
		Library:       "uring",
		PkgConfigName: "liburing",
		ArchiveName:   "wrapper_extern",
		WrapperSuffix: "__extern",
		Compiler:      "clang",
		Preprocessor:  "cpp",
		Archiver:      "ar",
		ArFlags:       "rcs",
		PkgConfig:     "pkg-config",
		GlueFile:      "zbindings_cgo.go",
		GOARCH:        runtime.GOARCH,
	}
}

// conventional variables read without the prefix, as make and go generate set them
var unprefixed = []string{"CC", "CPP", "AR", "PKG_CONFIG", "GOPACKAGE", "GOARCH"}

// FromEnv overlays environment variables onto c. environ has the form of
// os.Environ; empty values are ignored.
func (c *Config) FromEnv(environ []string) error {
	values := make(map[string]any)
	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || val == "" {
			continue
		}
		if name, found := strings.CutPrefix(key, EnvPrefix); found {
			values[name] = val
			continue
		}
		for _, u := range unprefixed {
			if key == u {
				if _, set := values[key]; !set {
					values[key] = val
				}
			}
		}
	}
	return c.FromMap(values)
}

// FromMap overlays string-keyed values onto c using the mapstructure tags.
// List values may be given as whitespace separated strings.
func (c *Config) FromMap(values map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       fieldsHook,
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "create decoder")
	}
	if err := dec.Decode(values); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "decode configuration")
	}
	return nil
}

func fieldsHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string(nil)) {
		return data, nil
	}
	return strings.Fields(data.(string)), nil
}

// Validate checks the required keys and normalizes paths to absolute form.
func (c *Config) Validate() error {
	required := map[string]string{
		"OUT_DIR":     c.OutDir,
		"SOURCE_ROOT": c.SourceRoot,
		"HEADER":      c.Header,
	}
	var missing []string
	for key, val := range required {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		err := errors.MissingKey(missing[0])
		if len(missing) > 1 {
			err.Detail = "required keys not set: " + strings.Join(missing, ", ")
		}
		return err
	}

	for key, val := range map[string]string{
		"LIBRARY":  c.Library,
		"ARCHIVE":  c.ArchiveName,
		"SUFFIX":   c.WrapperSuffix,
		"CC":       c.Compiler,
		"CPP":      c.Preprocessor,
		"AR":       c.Archiver,
		"AR_FLAGS": c.ArFlags,
	} {
		if strings.TrimSpace(val) == "" {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Detail("%s must not be empty", key).
				Build()
		}
	}
	if !c.SkipProbe && (c.PkgConfig == "" || c.PkgConfigName == "") {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("PKG_CONFIG and PKG_CONFIG_NAME are required unless SKIP_PROBE is set").
			Build()
	}

	var err error
	if c.SourceRoot, err = filepath.Abs(c.SourceRoot); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "resolve SOURCE_ROOT")
	}
	if c.OutDir, err = filepath.Abs(c.OutDir); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "resolve OUT_DIR")
	}
	return nil
}

// HeaderPath returns the absolute header path.
func (c *Config) HeaderPath() string {
	if filepath.IsAbs(c.Header) {
		return c.Header
	}
	return filepath.Join(c.SourceRoot, c.Header)
}

// WrapperSourcePath returns the fixed path of the generated wrapper source.
func (c *Config) WrapperSourcePath() string {
	return filepath.Join(c.OutDir, WrapperSourceDir, WrapperSourceName)
}

// ObjectPath returns the fixed path of the compiled wrapper object.
func (c *Config) ObjectPath() string {
	return filepath.Join(c.OutDir, ObjectName)
}

// ArchivePath returns the fixed path of the static archive.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.OutDir, "lib"+c.ArchiveName+".a")
}

// DeclarationsPath returns the fixed path of the generated declarations.
func (c *Config) DeclarationsPath() string {
	return filepath.Join(c.OutDir, DeclarationsName)
}

// DepfilePath returns the fixed path of the Make-style dependency file.
func (c *Config) DepfilePath() string {
	return filepath.Join(c.OutDir, DepfileName)
}

// GluePath returns the cgo glue file path, or "" when no Go package is set.
func (c *Config) GluePath() string {
	if c.GoPackage == "" || c.GlueFile == "" {
		return ""
	}
	return filepath.Join(c.SourceRoot, c.GlueFile)
}

// DefaultSearchPaths returns the system library directories searched at link
// time when SEARCH_PATHS is not configured.
func (c *Config) DefaultSearchPaths() []string {
	paths := []string{"/usr/lib/"}
	if triple := multiarch(c.GOARCH); triple != "" {
		paths = append([]string{"/usr/lib/" + triple + "/"}, paths...)
	}
	return paths
}

// LinkSearchPaths returns SearchPaths or, if unset, DefaultSearchPaths.
func (c *Config) LinkSearchPaths() []string {
	if len(c.SearchPaths) > 0 {
		return c.SearchPaths
	}
	return c.DefaultSearchPaths()
}

func multiarch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64-linux-gnu"
	case "arm64":
		return "aarch64-linux-gnu"
	case "386":
		return "i386-linux-gnu"
	case "arm":
		return "arm-linux-gnueabihf"
	case "riscv64":
		return "riscv64-linux-gnu"
	case "ppc64le":
		return "powerpc64le-linux-gnu"
	case "s390x":
		return "s390x-linux-gnu"
	case "loong64":
		return "loongarch64-linux-gnu"
	}
	return ""
}

// Load builds a Config from defaults and the current process environment.
func Load() (*Config, error) {
	c := Default()
	if err := c.FromEnv(os.Environ()); err != nil {
		return nil, err
	}
	return c, nil
}
