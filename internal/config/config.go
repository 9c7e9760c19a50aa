package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ToolConfig represents the configuration for site management
type ToolConfig struct {
	DataDir   string
	StorePath string
	HostsFile string
	DryRun    bool
	Verbose   bool
}

// NewToolConfig creates a new ToolConfig with default values
func NewToolConfig(dataDir string) *ToolConfig {
	return &ToolConfig{
		DataDir:   dataDir,
		StorePath: filepath.Join(dataDir, "sites.db"),
		HostsFile: defaultHostsFile(),
		DryRun:    false,
		Verbose:   false,
	}
}

func defaultHostsFile() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("SystemRoot"), "System32", "drivers", "etc", "hosts")
	}
	return "/etc/hosts"
}

// Validate checks if the configuration is valid
func (c *ToolConfig) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %v", c.DataDir, err)
	}
	return nil
}

// PrintConfig prints the current configuration if verbose mode is enabled
func (c *ToolConfig) PrintConfig() {
	if c.Verbose {
		fmt.Printf("Data Directory: %s\n", c.DataDir)
		fmt.Printf("Store Path: %s\n", c.StorePath)
		fmt.Printf("Hosts File: %s\n", c.HostsFile)
		fmt.Printf("Dry Run: %t\n", c.DryRun)
		fmt.Printf("Verbose: %t\n", c.Verbose)
	}
}
