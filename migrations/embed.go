// Package migrations bundles the schema files for the local SQLite store
// and the remote Postgres backend.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
