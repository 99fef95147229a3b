package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Stock Assistant Configuration

[model]
# Chat completion model used for both model queries of a turn
name = "gpt-4o-mini"
# Optional OpenAI-compatible endpoint (empty uses api.openai.com)
base_url = ""

[credentials]
# File holding the model API key as its only content.
# OPENAI_API_KEY in the environment (or .env) takes precedence.
api_key_file = "API_KEY"

[server]
# Listen address for 'stockbot serve'
addr = "127.0.0.1:8501"
# Browser sessions idle this long are forgotten
session_ttl = "2h"
# Oldest idle session is dropped beyond this many
max_sessions = 1000

[chart]
# The price chart tool overwrites this file on every call
path = "stock_price.png"
width = 1000
height = 500

[store]
# Journal every executed tool call to SQLite
enabled = true
# path = "~/.config/stock-assistant/journal.db"

[logging]
# debug, info, warn, error
level = "info"
console = true
file = true
# file_path = "~/.config/stock-assistant/logs/stockbot.log"
`

// createTemplateConfig writes a commented config.toml. Loading continues with defaults.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
