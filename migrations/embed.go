// Package migrations holds the MySQL schema, embedded so the CLI can apply
// it without a checkout.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
