// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"
	"maps"
	"path/filepath"

	"github.com/joho/godotenv"
)

// ErrEnvFile is returned when the env file cannot be read or parsed.
var ErrEnvFile = errors.New("failed to read env file")

// ReadEnvFile parses a dotenv file using FsFactory.
func ReadEnvFile(path string) (map[string]string, error) {
	f, err := FsFactory().Open(path)
	if err != nil {
		return nil, errors.Join(ErrEnvFile, err)
	}
	defer f.Close() //nolint:errcheck

	env, err := godotenv.Parse(f)
	if err != nil {
		return nil, errors.Join(ErrEnvFile, err)
	}

	return env, nil
}

// Environment returns the variables set for every step: the env file first,
// overridden by Env.
func (d *Definition) Environment() (map[string]string, error) {
	env := make(map[string]string)

	if d.EnvFile != "" {
		path := d.EnvFile
		if !filepath.IsAbs(path) && d.dir != "" {
			path = filepath.Join(d.dir, path)
		}

		fileEnv, err := ReadEnvFile(path)
		if err != nil {
			return nil, err
		}

		maps.Copy(env, fileEnv)
	}

	maps.Copy(env, d.Env)

	return env, nil
}
