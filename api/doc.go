// Package api defines the wire types of the imagegate HTTP API.
//
// # API Overview
//
// imagegate exposes three endpoints:
//   - GET  /health        liveness probe, never contacts the provider
//   - POST /api/generate  JSON {prompt, size?} → {image: <base64>}
//   - POST /api/edit      multipart prompt + image → {image: <base64>}
//
// Failures are reported as {"detail": "<message>"} with status 400 for
// invalid input and 500 for provider or internal failures.
//
// # Base URL
//
//	http://localhost:8000
package api
