// Package config loads compiler settings from mindc.toml or mindc.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"mindc/pkg/compiler"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Config mirrors the keys accepted in a config file. Keys left out keep
// their Default value.
type Config struct {
	Counter      string         `toml:"counter"       yaml:"counter"`
	ReturnSlot   string         `toml:"return_slot"   yaml:"return_slot"`
	ArgPrefix    string         `toml:"arg_prefix"    yaml:"arg_prefix"`
	ReturnOffset int            `toml:"return_offset" yaml:"return_offset"`
	KeepGoing    bool           `toml:"keep_going"    yaml:"keep_going"`
	Library      string         `toml:"library"       yaml:"library"`
	Functions    map[string]int `toml:"functions"     yaml:"functions"`

	// dir is the directory of the file the config came from; a relative
	// Library path is resolved against it.
	dir string
}

type Handle struct {
	Path   string
	Format Format
}

func Default() Config {
	t := compiler.DefaultTarget()
	return Config{
		Counter:      t.Counter,
		ReturnSlot:   t.ReturnSlot,
		ArgPrefix:    t.ArgPrefix,
		ReturnOffset: t.ReturnOffset,
	}
}

// FormatFor picks the decoder from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported config file %q: want .toml, .yaml or .yml", path)
}

// Load reads the config file at path.
func Load(path string) (Config, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	cfg, err := Decode(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Discover looks for mindc.toml, then mindc.yaml, then mindc.yml in dir.
// Parse errors fail immediately; missing files skip to the next candidate.
// With no file present it returns Default and a zero Handle.
func Discover(dir string) (Config, Handle, error) {
	candidates := []Handle{
		{Path: filepath.Join(dir, "mindc.toml"), Format: FormatTOML},
		{Path: filepath.Join(dir, "mindc.yaml"), Format: FormatYAML},
		{Path: filepath.Join(dir, "mindc.yml"), Format: FormatYAML},
	}

	var accumulated error
	for _, candidate := range candidates {
		_, err := os.Stat(candidate.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			accumulated = errors.Join(accumulated, fmt.Errorf("stat config %q: %w", candidate.Path, err))
			continue
		}

		cfg, err := Load(candidate.Path)
		if err != nil {
			return Config{}, Handle{}, err
		}
		return cfg, candidate, nil
	}

	if accumulated != nil {
		return Config{}, Handle{}, accumulated
	}
	return Default(), Handle{}, nil
}

// Decode parses data on top of Default, rejecting unknown keys.
func Decode(data []byte, format Format) (Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Counter == "" {
		errs = append(errs, errors.New("counter must not be empty"))
	}
	if c.ReturnSlot == "" {
		errs = append(errs, errors.New("return_slot must not be empty"))
	}
	if c.ArgPrefix == "" {
		errs = append(errs, errors.New("arg_prefix must not be empty"))
	}
	if c.ReturnOffset < 0 {
		errs = append(errs, fmt.Errorf("return_offset must not be negative, got %d", c.ReturnOffset))
	}
	for name, off := range c.Functions {
		if off < 0 {
			errs = append(errs, fmt.Errorf("function %q: negative entry offset %d", name, off))
		}
	}
	return errors.Join(errs...)
}

func (c Config) Target() compiler.Target {
	return compiler.Target{
		Counter:      c.Counter,
		ReturnSlot:   c.ReturnSlot,
		ArgPrefix:    c.ArgPrefix,
		ReturnOffset: c.ReturnOffset,
	}
}

// FunctionTable builds the table of fixed entry offsets.
func (c Config) FunctionTable() (*compiler.FunctionTable, error) {
	funcs := compiler.NewFunctionTable()
	for name, off := range c.Functions {
		if err := funcs.Define(name, off); err != nil {
			return nil, err
		}
	}
	return funcs, nil
}

// LibraryPath returns Library resolved against the config file's directory.
func (c Config) LibraryPath() string {
	if c.Library == "" || filepath.IsAbs(c.Library) || c.dir == "" {
		return c.Library
	}
	return filepath.Join(c.dir, c.Library)
}

// LibraryText reads the library file, or returns "" when none is set.
func (c Config) LibraryText() (string, error) {
	path := c.LibraryPath()
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read library %q: %w", path, err)
	}
	return string(data), nil
}

// Options converts the config into compiler options.
func (c Config) Options() (compiler.Options, error) {
	funcs, err := c.FunctionTable()
	if err != nil {
		return compiler.Options{}, err
	}
	lib, err := c.LibraryText()
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{
		Target:    c.Target(),
		Functions: funcs,
		Library:   lib,
		KeepGoing: c.KeepGoing,
	}, nil
}
