// Package migrations embeds the SQL schema so binaries can migrate without
// a checkout of the repository.
package migrations

import "embed"

// FS holds every *.sql migration, applied in lexicographic order.
//
//go:embed *.sql
var FS embed.FS
