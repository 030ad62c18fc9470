// Package handler implements the HTTP surface of Blockbase.
//
// Routes:
//
//	POST   /api/repos                          create a repository
//	GET    /api/repos                          list repositories
//	GET    /api/repos/{id}                     get a repository
//	DELETE /api/repos/{id}                     delete a repository and its history
//	GET    /api/repos/{id}/readme              read the README
//	PUT    /api/repos/{id}/readme              replace the README
//	POST   /api/repos/{id}/commits             ingest a commit batch (idempotent)
//	GET    /api/repos/{id}/commits             list commits, newest first
//	GET    /api/repos/{id}/commits/{commitID}  get a commit with its changes
//	GET    /healthz                            liveness
//
// Storage errors map to status codes: not-found to 404, an id collision
// on repository create to 409, anything else to 500. Malformed request
// bodies are 400. The SSE stream lives in the hub package and is mounted
// by cmd/server.
package handler
