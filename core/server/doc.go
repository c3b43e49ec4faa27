// Package server holds the HTTP server configuration: listen port and the
// API key protecting the editor endpoints.
package server
