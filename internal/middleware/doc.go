// Package middleware provides HTTP middleware for the video library server.
//
// It includes:
//   - Request IDs (X-Request-ID) and request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded path labels
//   - gzip compression of JSON and text responses
//   - CORS handling for the browser frontend
package middleware
