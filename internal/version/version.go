package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/alios-things/aos-cube/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/alios-things/aos-cube/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/alios-things/aos-cube/internal/version.Date={{.Date}}
)
