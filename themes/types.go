package themes

import (
	"github.com/google/uuid"
)

// Theme captures a complete site design (templates, assets, metadata)
// loaded from a theme package directory on disk.
type Theme struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Version     string      `json:"version"`
	Author      *string     `json:"author,omitempty"`
	ThemePath   string      `json:"theme_path"`
	Config      ThemeConfig `json:"config"`
}

// ThemeConfig records manifest level details parsed from theme descriptors.
type ThemeConfig struct {
	Templates map[string]string `json:"templates,omitempty"`
	Assets    *ThemeAssets      `json:"assets,omitempty"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}

// ThemeAssets references static files associated with the theme
type ThemeAssets struct {
	BasePath *string  `json:"base_path,omitempty"`
	Styles   []string `json:"styles,omitempty"`
	Scripts  []string `json:"scripts,omitempty"`
	Images   []string `json:"images,omitempty"`
}
