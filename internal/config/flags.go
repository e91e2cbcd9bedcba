package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagModel       = flag.String("model", "", "Default lighting model (ffp, per_pixel)")
	flagPoint       = flag.Int("point", -1, "Point light count")
	flagDirectional = flag.Int("directional", -1, "Directional light count")
	flagSpot        = flag.Int("spot", -1, "Spot light count")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the global flags.
func Args() []string {
	return flag.Args()
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
	if *flagModel != "" {
		cfg.Shader.LightingModel = *flagModel
	}
	if *flagPoint >= 0 {
		cfg.Lights.Point = *flagPoint
	}
	if *flagDirectional >= 0 {
		cfg.Lights.Directional = *flagDirectional
	}
	if *flagSpot >= 0 {
		cfg.Lights.Spot = *flagSpot
	}
}
