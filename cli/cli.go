package cli

// Version and Date should be set at build time using ldflags, e.g.:
//
//	-ldflags "-X 'github.com/architeuthis-flux/jumperless-forge/cli.Version=1.2.3' -X 'github.com/architeuthis-flux/jumperless-forge/cli.Date=2026-08-26'"
var (
	Version string
	Date    string
)
