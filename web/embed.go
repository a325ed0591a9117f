package web

import (
	"embed"
	"io/fs"
)

//go:embed all:dist
var distFS embed.FS

// DistFS returns the embedded console frontend. The dist/ tree is produced by
// the frontend build; the checked-in shell page keeps the embed valid.
func DistFS() (fs.FS, error) {
	return fs.Sub(distFS, "dist")
}
