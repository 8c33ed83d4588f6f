// Package assets embeds the files shipped inside the binaries.
package assets

import "embed"

// FS holds the SQL migrations and the email templates.
//
//go:embed migrations/*.sql templates/email/*
var FS embed.FS

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "templates/email"
)
