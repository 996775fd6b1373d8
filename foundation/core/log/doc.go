// Package log provides structured logging for kylang.
//
// Package: log
// Title: kylang Structured Logging
// Description: Levelled, field-based logging with JSON, text and console
//              formatters. Loggers are immutable: WithField and friends return
//              a child logger, so components can tag their output
//              ("component", "parser") without affecting the parent.
// Author: msto63
// Version: v0.2.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.2.0: Synchronous writer only, stderr default output
//
// Usage:
//
//	logger := log.NewWithConfig(log.Config{Level: log.LevelDebug, Format: log.FormatConsole})
//	logger.WithField("component", "executor").Debug("run started", log.Fields{"statements": 4})
package log
