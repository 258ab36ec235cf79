package domain

import "encoding/json"

// PluginRecord is the persisted enable-state and configuration of a plugin,
// keyed by the plugin's own stable id.
type PluginRecord struct {
	ID      string
	Enabled bool
	Config  json.RawMessage
}

// PluginMetadata is the static declaration a plugin makes about itself.
type PluginMetadata struct {
	ID           string
	Name         string
	Version      string
	Author       string
	Dependencies []string
	ConfigSchema json.RawMessage
}
