package commands

import (
	"go.uber.org/zap"

	"github.com/BuzzLyutic/nexustask/internal/config"
)

// Flags holds the global flag values and what the Before hook derives from
// them.
type Flags struct {
	ConfigPath string
	DataDir    string
	RemoteURL  string
	Store      string
	LogLevel   string
	LogFile    string
	Offline    bool

	// Config and Logger are set in the Before hook and available to all
	// commands.
	Config config.Config
	Logger *zap.Logger
}

// Apply copies explicitly set flag values over the loaded config.
func (f *Flags) Apply(cfg *config.Config) {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.RemoteURL != "" {
		cfg.Remote.URL = f.RemoteURL
	}
	if f.Store != "" {
		cfg.Store.Backend = f.Store
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
}
