package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagCell      = flag.String("cell", "", "Path to the world geometry archive")
	flagPortal    = flag.String("portal", "", "Path to the object/portal archive")
	flagProject   = flag.String("project", "", "Path to the project database")
	flagOutput    = flag.String("output", "", "Export output directory")
	flagIteration = flag.String("iteration", "", "Export iteration ('current' or a number)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagCell != "" {
		cfg.Dats.CellPath = *flagCell
	}
	if *flagPortal != "" {
		cfg.Dats.PortalPath = *flagPortal
	}
	if *flagProject != "" {
		cfg.Project.Path = *flagProject
	}
	if *flagOutput != "" {
		cfg.Export.OutputDir = *flagOutput
	}
	if *flagIteration != "" {
		cfg.Export.Iteration = *flagIteration
	}
}
