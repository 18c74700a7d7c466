package main

// Version details reported by --version and the usage output. Update these as part of
// cutting a release.
const (
	Version     = "v0.1.0"
	ReleaseDate = "2026-08-25"
)
