package version

// Overridden at build time via -ldflags "-X mimic/internal/version.Version=...".
var (
	AppName = "Mimic"
	Version = "dev"
)
