package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagFormat        = flag.String("format", "", "Output encoding: text or binary")
	flagWeldTolerance = flag.Float64("weld-tolerance", -1, "Weld vertices closer than this distance")
	flagNoFastPath    = flag.Bool("no-fast-path", false, "Tessellate triangles and quads like any other face")
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
	if *flagFormat != "" {
		cfg.Output.Format = *flagFormat
	}
	if *flagWeldTolerance >= 0 {
		cfg.Welding.Tolerance = *flagWeldTolerance
	}
	if *flagNoFastPath {
		cfg.Tessellation.FastPath = false
	}
}
