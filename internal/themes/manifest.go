package themes

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goliatone/go-blog/internal/identity"
)

// ManifestFileName is the descriptor every theme package must carry.
const ManifestFileName = "theme.json"

// Manifest mirrors the expected theme.json structure.
type Manifest struct {
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Version     string            `json:"version"`
	Author      *string           `json:"author,omitempty"`
	Templates   map[string]string `json:"templates,omitempty"`
	Assets      *ThemeAssets      `json:"assets,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// LoadManifest reads and parses a manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("themes: open manifest: %w", err)
	}
	defer file.Close()
	return ParseManifest(file)
}

// ParseManifest decodes manifest JSON from a reader.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var manifest Manifest
	if err := json.NewDecoder(r).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("themes: parse manifest: %w", err)
	}
	return &manifest, nil
}

// ManifestToTheme converts a manifest into a theme record rooted at themePath.
func ManifestToTheme(themePath string, manifest *Manifest) (*Theme, error) {
	if manifest == nil {
		return nil, fmt.Errorf("themes: manifest required")
	}
	if manifest.Name == "" {
		return nil, fmt.Errorf("themes: manifest missing name")
	}
	if manifest.Version == "" {
		return nil, fmt.Errorf("themes: manifest missing version")
	}

	config := ThemeConfig{
		Templates: manifest.Templates,
		Assets:    manifest.Assets,
		Metadata:  manifest.Metadata,
	}

	return &Theme{
		ID:          identity.ThemeUUID(manifest.Name),
		Name:        manifest.Name,
		Description: cloneString(manifest.Description),
		Version:     manifest.Version,
		Author:      cloneString(manifest.Author),
		ThemePath:   filepath.Clean(themePath),
		Config:      config,
	}, nil
}
