package config

import "time"

// defaultHomeDirName mirrors home.DefaultDirName without importing it;
// viper only needs the search path string.
const defaultHomeDirName = ".elcomtarif"

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Source: SourceConfig{
			BaseURL:       "https://www.strompreis.elcom.admin.ch/api/graphql",
			Timeout:       60 * time.Second,
			RetryAttempts: 3,
			RetryDelay:    2 * time.Second,
		},
		Extraction: ExtractionConfig{
			APIKey:     "${OPENAI_API_KEY}",
			Model:      "gpt-4o-mini",
			MaxRetries: 3,
			Timeout:    300 * time.Second,
		},
		Pipeline: PipelineConfig{
			Year:             time.Now().Year(),
			FetchConcurrency: 4,
			OutputFile:       "res_harmonized_{operator}.json",
		},
	}
}
