// Copyright 2026 Chainguard, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatINI  Format = "ini"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(p string) (Format, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".ini", ".conf":
		return FormatINI, nil
	default:
		return "", fmt.Errorf("cannot tell configuration format of %q (want .yaml, .json, .toml or .ini)", p)
	}
}

type ConfigurationParsingOption func(*configOptions)

type configOptions struct {
	filesystem fs.FS
	format     Format
	timeout    int
	workdir    string
}

func (options *configOptions) include(opts ...ConfigurationParsingOption) {
	for _, fn := range opts {
		fn(options)
	}
}

// WithFS sets the fs.FS the configuration file is read from. If not
// provided, an os.DirFS of the file's directory is used.
func WithFS(filesystem fs.FS) ConfigurationParsingOption {
	return func(options *configOptions) {
		options.filesystem = filesystem
	}
}

// WithFormat overrides the format inferred from the file extension.
func WithFormat(f Format) ConfigurationParsingOption {
	return func(options *configOptions) {
		options.format = f
	}
}

// WithDefaultTimeout sets the command timeout, in seconds, used when the file
// does not set one. A file that sets 0 disables the timeout.
func WithDefaultTimeout(seconds int) ConfigurationParsingOption {
	return func(options *configOptions) {
		options.timeout = seconds
	}
}

// WithDefaultWorkdir sets the work directory used when the file does not set
// one.
func WithDefaultWorkdir(dir string) ConfigurationParsingOption {
	return func(options *configOptions) {
		options.workdir = dir
	}
}

// ParseConfiguration reads, decodes, defaults and validates a configuration
// file.
func ParseConfiguration(ctx context.Context, configurationFilePath string, opts ...ConfigurationParsingOption) (*Configuration, error) {
	log := clog.FromContext(ctx)

	if configurationFilePath == "" {
		return nil, errors.New("no configuration file path provided")
	}

	options := &configOptions{}
	options.include(opts...)

	if options.format == "" {
		f, err := FormatFromPath(configurationFilePath)
		if err != nil {
			return nil, err
		}
		options.format = f
	}

	if options.filesystem == nil {
		options.filesystem = os.DirFS(filepath.Dir(configurationFilePath))
		configurationFilePath = filepath.Base(configurationFilePath)
	}

	data, err := fs.ReadFile(options.filesystem, configurationFilePath)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file: %w", err)
	}

	timeout := DefaultTimeout
	if options.timeout != 0 {
		timeout = options.timeout
	}
	cfg := withNumericDefaults(timeout)
	if err := decodeInto(data, options.format, cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration file %q: %w", configurationFilePath, err)
	}

	if cfg.Common.Workdir == "" && options.workdir != "" {
		cfg.Common.Workdir = options.workdir
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debugf("loaded %s configuration from %s", options.format, configurationFilePath)
	return cfg, nil
}

// Decode reads a configuration in the given format without applying
// defaults. Unknown keys are an error in every format.
func Decode(r io.Reader, format Format) (*Configuration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	cfg := &Configuration{}
	if err := decodeInto(data, format, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeInto overlays the keys present in data on cfg.
func decodeInto(data []byte, format Format, cfg *Configuration) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	case FormatJSON:
		if err := sigsyaml.UnmarshalStrict(data, cfg); err != nil {
			return err
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return err
		}
	case FormatINI:
		if err := decodeINI(data, cfg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported configuration format %q", format)
	}
	return nil
}
