// Package config handles configuration loading for the postdesk console.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults so the console can run
// with nothing but a backend origin.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from POSTDESK_CONFIG environment variable
//  2. ~/.config/postdesk/config.yaml (XDG_CONFIG_HOME respected)
//
// When no file exists, LoadOrDefault falls back to the POSTDESK_BACKEND_URL
// environment variable.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	backend:
//	  url: "${POSTDESK_BACKEND_URL}"
//
// # Configuration Sections
//
// Backend origin:
//
//	backend:
//	  url: "https://api.example.com"
//
// Local state database:
//
//	state:
//	  path: "~/.local/share/postdesk/state.db"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
