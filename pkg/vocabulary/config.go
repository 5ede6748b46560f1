package vocabulary

import (
	"context"
	"fmt"
	"os"

	"github.com/adrg/xdg"
	"github.com/ohdsi/condenser/pkg/api/atlas"
)

const configName = "condenser/config.yaml"

// SearchConfig returns the path of the user's config file in the XDG config
// directories, or an empty string if there is none.
func SearchConfig() string {
	file, err := xdg.SearchConfigFile(configName)
	if err != nil {
		return ""
	}
	return file
}

// DefaultConfigFile returns the location where init places the config file,
// creating its parent directory if needed.
func DefaultConfigFile() (string, error) {
	return xdg.ConfigFile(configName)
}

func LoadConfig(ctx context.Context, file string) (*atlas.Config, error) {
	config := atlas.DefaultConfig()
	if err := unmarshalFile(ctx, file, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %v", file, err)
	}
	return config, nil
}

// InitConfig writes the default configuration to file. An existing file is
// never overwritten.
func InitConfig(file string) error {
	_, err := os.Stat(file)
	if !os.IsNotExist(err) {
		return fmt.Errorf("config file %s already exists", file)
	}
	return marshalFile(file, atlas.DefaultConfig())
}
