// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a structured logger in a context.Context.
//
// The level is read once from RUNPS_LOG_LEVEL (DEBUG, INFO, WARN or ERROR,
// anything else means WARN) and can be changed at runtime through LevelVar.
// RUNPS_LOG_FORMAT=json switches the default logger to JSON lines.
// The default logger writes to stderr, leaving stdout to the commands being run.
package ctxlog
