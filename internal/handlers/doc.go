// Package handlers provides the HTTP handlers for the video library API.
//
// It includes handlers for:
//   - Listing and searching videos (GET /api/videos)
//   - Renaming and deleting videos
//   - Health, liveness, readiness and version endpoints
//
// Error responses are JSON objects of the form {"error": "..."}.
package handlers
