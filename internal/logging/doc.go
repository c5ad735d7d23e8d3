// Recsys - Book Recommendation and Catalog Deduplication
// Copyright 2026 nrchnnas
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nrchnnas/recsys

// Package logging provides centralized zerolog-based structured logging.
//
// JSON output is the default; console output is available for local runs.
// Components derive child loggers carrying a component field and keep them
// by value:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logger := logging.WithComponent("pipeline")
//	logger.Info().Int("items", n).Msg("catalog loaded")
//
// # Context
//
// HTTP request IDs and snapshot build IDs travel in context.Context and are
// added to every line written through Ctx:
//
//	ctx = logging.ContextWithBuildID(ctx, logging.GenerateBuildID())
//	logging.Ctx(ctx).Info().Msg("build started")
//
// # slog
//
// SlogHandler bridges log/slog to zerolog for libraries that only accept an
// *slog.Logger, such as the suture supervisor event hook.
//
// # Configuration
//
// Environment Variables:
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
package logging
