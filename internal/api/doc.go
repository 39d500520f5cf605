// Package api contains the HTTP transport layer: request and response
// models, handlers, routing, and the error-to-status mapping that keeps
// internal errors out of client responses.
package api
