// Package models provides the core data structures for handling webhook requests and responses.
package models

import "github.com/isometry/convai-webhook/internal/rawbody"

// Request represents an incoming webhook delivery as seen by the handler, independent of the hosting runtime.
type Request struct {
	Method string
	// Headers carries lower-cased header names.
	Headers map[string]string
	Body    rawbody.Source
}

// Response defines the structure for an HTTP response containing a message, an error, headers, and a status code.
type Response struct {
	Message    string
	Error      string
	Headers    map[string]string
	StatusCode int
}
