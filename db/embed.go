// Package db provides embedded database schema and migration files.
package db

import _ "embed"

// Schema contains the DDL for the order tables and the notification
// triggers that feed the event listener.
//
//go:embed migrations/001_schema.sql
var Schema string
