package config

import (
	"log"

	"github.com/spf13/afero"
)

// Initialize writes a default configuration into dir, keeping any file that
// already exists, and loads it.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	return initializeFs(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

func initializeFs(fs afero.Fs, logger *log.Logger) (*Configuration, error) {
	exists, err := afero.Exists(fs, ConfigurationName)
	if err != nil {
		return nil, err
	}

	if exists {
		logger.Printf("- %s already exists, skipping\n", ConfigurationName)
	} else {
		logger.Printf("- Writing %s\n", ConfigurationName)
		if err := afero.WriteFile(fs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	}

	return loadFs(fs)
}
