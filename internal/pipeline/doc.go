// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pipeline runs a chain of commands described in YAML.
//
// Each step names a command, its positional arguments and its named options.
// The output of every step is piped into the standard input of the next,
// and the process of the last step is returned to the caller:
//
//	name: newest logs
//	env_file: .env
//	steps:
//	  - command: ls
//	    args: ["/var/log"]
//	    options:
//	      t: true
//	  - command: head
//	    options:
//	      n: 5
//
// Options keep the order they are written in, so the rendered flags do too.
package pipeline
