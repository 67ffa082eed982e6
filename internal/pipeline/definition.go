// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/runps/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrInvalidYaml is returned when a definition cannot be decoded.
	ErrInvalidYaml = errors.New("invalid YAML")
	// ErrNoSteps is returned when a definition has no steps.
	ErrNoSteps = errors.New("no steps specified")
	// ErrInvalidStep is returned when a step is incomplete or contradictory.
	ErrInvalidStep = errors.New("invalid step")
	// ErrReadDefinition is returned when a definition file cannot be read.
	ErrReadDefinition = errors.New("failed to read pipeline definition")
)

// Definition represents a pipeline file.
type Definition struct {
	// Name is the descriptive name of the pipeline.
	Name string `yaml:"name"`
	// Description is free text shown in logs.
	Description string `yaml:"description,omitempty"`
	// EnvFile is a dotenv file whose variables are set for every step.
	// A relative path is resolved against the directory of the definition file.
	EnvFile string `yaml:"env_file,omitempty"`
	// Env is set for every step, on top of EnvFile.
	Env map[string]string `yaml:"env,omitempty"`
	// Steps run in order, each piped into the next.
	Steps []Step `yaml:"steps"`

	dir string
}

// Step is a single command in a pipeline.
type Step struct {
	// Name is used in logs and error messages. It defaults to the command.
	Name string `yaml:"name,omitempty"`
	// Command is resolved on the search path unless it contains a separator.
	Command string `yaml:"command"`
	// Args are positional arguments, passed before the options.
	Args []string `yaml:"args,omitempty"`
	// Options are named options rendered as flags in the order written.
	Options yaml.MapSlice `yaml:"options,omitempty"`
	// OkCodes are the exit codes treated as success. The default is 0.
	OkCodes []int `yaml:"ok_codes,omitempty"`
	// Background starts the step without waiting, streaming its output to the next step.
	Background bool `yaml:"background,omitempty"`
	// WorkingDirectory is the directory the step runs in.
	WorkingDirectory string `yaml:"working_directory,omitempty"`
	// Env is set for this step only.
	Env map[string]string `yaml:"env,omitempty"`
	// Stdin is fed to the first step. Later steps read the previous step's output.
	Stdin *string `yaml:"stdin,omitempty"`
}

// DisplayName returns the step name, or the command when it has none.
func (s Step) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}

	return s.Command
}

// Parse decodes and validates a definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYaml, err)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	return &def, nil
}

// Load reads and parses the definition at path using FsFactory.
func Load(ctx context.Context, path string) (*Definition, error) {
	ctxlog.Debug(ctx, "loading pipeline definition", "path", path)

	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return nil, errors.Join(ErrReadDefinition, err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	def.dir = filepath.Dir(path)

	return def, nil
}

// Validate reports every problem in the definition at once.
func (d *Definition) Validate() error {
	if len(d.Steps) == 0 {
		return ErrNoSteps
	}

	var result error

	for i, s := range d.Steps {
		if s.Command == "" {
			result = multierror.Append(result, fmt.Errorf("%w: step %d has no command", ErrInvalidStep, i))
		}

		if i > 0 && s.Stdin != nil {
			result = multierror.Append(result, fmt.Errorf("%w: step %q reads the previous step, stdin is only allowed on the first step", ErrInvalidStep, s.DisplayName()))
		}

		for _, item := range s.Options {
			key := fmt.Sprint(item.Key)

			if strings.HasPrefix(key, "_") {
				result = multierror.Append(result, fmt.Errorf("%w: step %q option %q is a control option, use the step fields instead", ErrInvalidStep, s.DisplayName(), key))
			}
		}
	}

	return result
}
