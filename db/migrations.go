// Package db ships the SQL migrations for the postgres snapshot store.
package db

import "embed"

// Migrations holds every file under migrations/, used when no directory is found on disk.
//
//go:embed migrations/*.sql
var Migrations embed.FS
