// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runps

import (
	"fmt"

	"github.com/matt-FFFFFF/runps/internal/argv"
)

// callArgs is a call argument list split into its three parts.
type callArgs struct {
	upstream   *Process
	positional []any
	named      []Option
	control    controls
}

// parseArgs partitions args. When pipe is true, a *Process given as the
// first positional argument becomes the upstream of a pipe instead of
// being substituted.
func parseArgs(args []any, pipe bool) (*callArgs, error) {
	ca := &callArgs{}

	for _, a := range args {
		switch v := a.(type) {
		case Control:
			if err := ca.control.apply(v.name, v.value); err != nil {
				return nil, err
			}
		case Option:
			if err := ca.addOption(v); err != nil {
				return nil, err
			}
		case []Option:
			for _, o := range v {
				if err := ca.addOption(o); err != nil {
					return nil, err
				}
			}
		case *Process:
			if v == nil {
				return nil, fmt.Errorf("%w: nil *Process", ErrUnsupportedType)
			}

			if pipe && ca.upstream == nil && len(ca.positional) == 0 {
				ca.upstream = v
				continue
			}

			ca.positional = append(ca.positional, v)
		case nil:
			return nil, fmt.Errorf("%w: nil argument", ErrUnsupportedType)
		default:
			ca.positional = append(ca.positional, v)
		}
	}

	return ca, nil
}

func (ca *callArgs) addOption(o Option) error {
	if len(o.Key) > 1 && o.Key[0] == '_' {
		return ca.control.apply(o.Key, o.Value)
	}

	ca.named = append(ca.named, o)

	return nil
}

// render builds the tokens contributed by the call: positional arguments in
// order, then named options in insertion order.
func (ca *callArgs) render() ([]string, error) {
	tokens := make([]string, 0, len(ca.positional)+2*len(ca.named))

	for _, p := range ca.positional {
		switch v := p.(type) {
		case []string:
			tokens = append(tokens, v...)
		case *Process:
			out, err := v.Output()
			if err != nil {
				return nil, fmt.Errorf("substituting output of %s: %w", v.argv[0], err)
			}

			tokens = append(tokens, argv.Substitute(out)...)
		case bool:
			return nil, fmt.Errorf("%w: positional bool, use Opt for flags", ErrUnsupportedType)
		default:
			s, err := argv.Scalar(v)
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, s)
		}
	}

	for _, o := range ca.named {
		flag, err := argv.Flag(o.Key, o.Value)
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, flag...)
	}

	return tokens, nil
}
