package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GregMSThompson/pitch-backend/internal/deck"
)

// loadDeck reads a deck document. Files ending in .yaml or .yml are YAML;
// everything else is JSON.
func loadDeck(path string) (*deck.Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	d := new(deck.Deck)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, d)
	default:
		err = json.Unmarshal(data, d)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return d, nil
}
