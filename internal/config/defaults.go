package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/yomitori/data/db/yomitori.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/yomitori/data/indices/bleve"
	}
	if cfg.Vision.Provider == "" {
		cfg.Vision.Provider = "googleai"
	}
	if len(cfg.Vision.Models) == 0 {
		cfg.Vision.Models = []string{
			"gemini-2.0-flash-exp",
			"gemini-2.5-flash",
			"gemini-2.5-flash-lite",
		}
	}
	if cfg.Export.FontName == "" {
		cfg.Export.FontName = "Calibri"
	}
	if cfg.Export.FontSize == 0 {
		cfg.Export.FontSize = 11
	}
	if cfg.Export.LineSpacing == 0 {
		cfg.Export.LineSpacing = 1.15
	}
	if cfg.Export.MarginInches == 0 {
		cfg.Export.MarginInches = 1
	}
}
