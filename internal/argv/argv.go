// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package argv renders call arguments into discrete process argument tokens.
// Tokens are never quoted or joined; each one becomes a single argv element.
package argv

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedType is returned when a value cannot be rendered as an argument token.
var ErrUnsupportedType = errors.New("unsupported argument type")

// Flag renders a named option.
// A one character key becomes a short flag ("-k"), anything longer a long flag
// ("--key") with underscores rewritten to hyphens.
// true renders the flag alone, false renders nothing, any other value
// renders the flag followed by the value as a separate token.
func Flag(key string, value any) ([]string, error) {
	var flag string

	switch len(key) {
	case 0:
		return nil, fmt.Errorf("%w: empty option name", ErrUnsupportedType)
	case 1:
		flag = "-" + key
	default:
		flag = "--" + strings.ReplaceAll(key, "_", "-")
	}

	if b, ok := value.(bool); ok {
		if b {
			return []string{flag}, nil
		}

		return nil, nil
	}

	v, err := Scalar(value)
	if err != nil {
		return nil, fmt.Errorf("option %q: %w", key, err)
	}

	return []string{flag, v}, nil
}

// Scalar renders a string, number or fmt.Stringer as a single token.
func Scalar(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	return "", fmt.Errorf("%w: %T", ErrUnsupportedType, value)
}

// Substitute turns captured command output into positional tokens, the way a
// shell substitutes command output. One trailing line terminator is dropped;
// output that still spans several lines yields one token per line.
func Substitute(output string) []string {
	output = TrimNewline(output)
	if !strings.Contains(output, "\n") {
		return []string{output}
	}

	lines := strings.Split(output, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	return lines
}

// TrimNewline removes a single trailing "\n" or "\r\n".
func TrimNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}

	return strings.TrimSuffix(s, "\n")
}
