// Package assets embeds the static files the server ships with:
// the default puzzle library and the SQLite migrations.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed puzzles.json
var puzzlesJSON []byte

//go:embed sql/*.sql
var migrations embed.FS

// Puzzles returns the raw embedded puzzle library (a JSON array).
func Puzzles() []byte {
	return puzzlesJSON
}

// Migrations returns the embedded migration scripts rooted at "sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "sql")
	if err != nil {
		// fs.Sub only fails on an invalid path; "sql" is a literal.
		panic(err)
	}
	return sub
}
