package app

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultDataDir returns the default data directory.
// Priority: ~/.hytalepanel > /var/lib/hytalepanel
func DefaultDataDir() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".hytalepanel")
	}
	return "/var/lib/hytalepanel"
}

// ConfigureViper sets up viper with standard config file search paths.
// Config file: hytalepanel.yaml
// Search paths (in order): /etc/hytalepanel, ~/.config/hytalepanel, current directory
func ConfigureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("hytalepanel")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/hytalepanel")
		v.AddConfigPath("$HOME/.config/hytalepanel")
		v.AddConfigPath(".")
	}
}
