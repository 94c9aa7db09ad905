// Package logging provides the structured logger used across Lumen Core.
//
// It is a thin wrapper over log/slog configured from config.LoggingConfig,
// adding the service and version default fields. Components receive a
// *Logger at construction (often narrowed with With("component", ...)) and
// never create their own handlers.
package logging
