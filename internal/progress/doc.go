// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress reports the lifecycle of pipeline steps as they run.
// Reporters never block the pipeline: events that cannot be delivered are dropped.
package progress
