// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/runps"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	stubs := gostub.Stub(&FsFactory, func() afero.Fs {
		return fs
	})
	t.Cleanup(stubs.Reset)

	return fs
}

func TestParse(t *testing.T) {
	def, err := Parse([]byte(`
name: "sorted words"
steps:
  - command: printf
    args: ["b\na\n"]
  - name: sort them
    command: sort
    options:
      reverse: true
      k: 1
      field_separator: ","
    ok_codes: [0, 2]
`))
	require.NoError(t, err)

	assert.Equal(t, "sorted words", def.Name)
	require.Len(t, def.Steps, 2)
	assert.Equal(t, "printf", def.Steps[0].DisplayName())
	assert.Equal(t, "sort them", def.Steps[1].DisplayName())
	assert.Equal(t, []int{0, 2}, def.Steps[1].OkCodes)

	keys := make([]any, 0, len(def.Steps[1].Options))
	for _, item := range def.Steps[1].Options {
		keys = append(keys, item.Key)
	}

	assert.Equal(t, []any{"reverse", "k", "field_separator"}, keys, "options keep the order they are written in")
}

func TestParse_Errors(t *testing.T) {
	tcs := []struct {
		name string
		yaml string
		want error
	}{
		{name: "invalid yaml", yaml: "steps: [", want: ErrInvalidYaml},
		{name: "no steps", yaml: "name: empty", want: ErrNoSteps},
		{name: "missing command", yaml: "steps:\n  - args: [x]", want: ErrInvalidStep},
		{name: "reserved option", yaml: "steps:\n  - command: ls\n    options:\n      _bg: true", want: ErrInvalidStep},
		{name: "stdin on later step", yaml: "steps:\n  - command: ls\n  - command: cat\n    stdin: x", want: ErrInvalidStep},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	def := &Definition{
		Steps: []Step{
			{},
			{Command: "ls", Options: yaml.MapSlice{{Key: "_out", Value: "x"}}},
		},
	}

	err := def.Validate()
	require.ErrorIs(t, err, ErrInvalidStep)
	assert.Contains(t, err.Error(), "step 0 has no command")
	assert.Contains(t, err.Error(), `option "_out" is a control option`)
}

func TestValidate_BareControlWordsAreOptions(t *testing.T) {
	def, err := Parse([]byte("steps:\n  - command: docker\n    args: [run]\n    options:\n      env: A=1\n      out: json\n"))
	require.NoError(t, err)

	args, err := def.Steps[0].callArgs(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{
		[]string{"run"},
		runps.Opt("env", "A=1"),
		runps.Opt("out", "json"),
	}, args)
}

func TestLoad(t *testing.T) {
	memFs(t, map[string]string{
		"/work/pipe.yaml": "name: p\nenv_file: .env\nsteps:\n  - command: env\n",
		"/work/.env":      "GREETING=hello\nOVERRIDDEN=file\n",
	})

	def, err := Load(context.Background(), "/work/pipe.yaml")
	require.NoError(t, err)

	def.Env = map[string]string{"OVERRIDDEN": "definition"}

	env, err := def.Environment()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"GREETING": "hello", "OVERRIDDEN": "definition"}, env)
}

func TestLoad_Missing(t *testing.T) {
	memFs(t, nil)

	_, err := Load(context.Background(), "/nope.yaml")
	require.ErrorIs(t, err, ErrReadDefinition)
}

func TestEnvironment_MissingEnvFile(t *testing.T) {
	memFs(t, map[string]string{
		"/work/pipe.yaml": "env_file: missing.env\nsteps:\n  - command: env\n",
	})

	def, err := Load(context.Background(), "/work/pipe.yaml")
	require.NoError(t, err)

	_, err = def.Environment()
	require.ErrorIs(t, err, ErrEnvFile)
}

func TestReadEnvFile(t *testing.T) {
	memFs(t, map[string]string{
		"/a.env": "# comment\nexport A=1\nB=\"two words\"\n",
	})

	env, err := ReadEnvFile("/a.env")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "two words"}, env)
}
