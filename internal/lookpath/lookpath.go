// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package lookpath resolves logical command names to executables on a search path.
//
// A name that is not found as written, and contains underscores, is retried
// with every underscore replaced by a hyphen. This lets callers spell
// commands such as "apt-get" as "apt_get".
package lookpath

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

const defaultPathExt = ".COM;.EXE;.BAT;.CMD"

// Resolver searches an ordered list of directories for executables.
// The zero value searches nothing; use New.
type Resolver struct {
	fs      afero.Fs
	dirs    []string
	exts    []string
	windows bool
}

// New creates a Resolver from an environment snapshot in "KEY=value" form.
// PATH supplies the directories, PATHEXT the executable suffixes on Windows.
func New(fs afero.Fs, env []string) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	r := &Resolver{
		fs:      fs,
		windows: runtime.GOOS == "windows",
	}

	path, _ := Getenv(env, "PATH")
	if path != "" {
		r.dirs = filepath.SplitList(path)
	}

	if r.windows {
		pathExt, ok := Getenv(env, "PATHEXT")
		if !ok || pathExt == "" {
			pathExt = defaultPathExt
		}

		for _, e := range strings.Split(strings.ToLower(pathExt), ";") {
			if e == "" {
				continue
			}

			if e[0] != '.' {
				e = "." + e
			}

			r.exts = append(r.exts, e)
		}
	}

	return r
}

// Resolve returns the path of the first executable matching name.
// The boolean is false when neither name nor its hyphenated form resolves.
func (r *Resolver) Resolve(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	if p, ok := r.find(name); ok {
		return p, true
	}

	if strings.Contains(name, "_") {
		return r.find(strings.ReplaceAll(name, "_", "-"))
	}

	return "", false
}

func (r *Resolver) find(name string) (string, bool) {
	// Names with a directory component are not looked up on the search path.
	if strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		return r.candidate(name)
	}

	for _, dir := range r.dirs {
		if dir == "" {
			// An empty entry means the current directory, which we never search implicitly.
			continue
		}

		if p, ok := r.candidate(filepath.Join(dir, name)); ok {
			return p, true
		}
	}

	return "", false
}

func (r *Resolver) candidate(path string) (string, bool) {
	if r.isExecutable(path) {
		return path, true
	}

	if !r.windows || filepath.Ext(path) != "" {
		return "", false
	}

	for _, ext := range r.exts {
		if r.isExecutable(path + ext) {
			return path + ext, true
		}
	}

	return "", false
}

func (r *Resolver) isExecutable(path string) bool {
	info, err := r.fs.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	// Windows has no executable bit; the suffix decides.
	if r.windows {
		return true
	}

	return info.Mode()&0o111 != 0
}

// Getenv looks up key in an environment snapshot. Later entries win, as with os/exec.
func Getenv(env []string, key string) (string, bool) {
	var (
		val   string
		found bool
	)

	for _, kv := range env {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		if k == key || (runtime.GOOS == "windows" && strings.EqualFold(k, key)) {
			val, found = v, true
		}
	}

	return val, found
}
