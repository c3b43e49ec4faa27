// Package logger builds the application's zap logger from configuration
// (level and encoding) and carries the request ray id into per-request log
// fields.
package logger
