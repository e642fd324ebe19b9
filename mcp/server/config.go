package server

// Config holds configuration for the MCP server.
type Config struct {
	// Name and Version are announced to MCP clients.
	Name    string
	Version string

	// Verbose logs every tool call at Info level instead of Debug.
	Verbose bool
}

// DefaultConfig returns a Config with default settings.
func DefaultConfig() *Config {
	return &Config{
		Name:    "assetkit",
		Version: "1.0.0",
	}
}
