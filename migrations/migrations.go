// Package migrations embeds the SQL schema so `restaurant-telegram migrate` works
// regardless of the current working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
