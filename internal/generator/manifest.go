package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".blog-manifest.json"
	manifestFileVersion = 1
	manifestEngineKey   = "engine"
)

// buildManifest records what the last successful build produced so
// incremental runs can skip unchanged pages and assets.
type buildManifest struct {
	Version     int                        `json:"version"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Pages       map[string]manifestPage    `json:"pages"`
	Assets      map[string]manifestAsset   `json:"assets"`
	Metadata    map[string]json.RawMessage `json:"metadata,omitempty"`
}

type manifestPage struct {
	Slug         string    `json:"slug"`
	Locale       string    `json:"locale"`
	Kind         string    `json:"kind"`
	Route        string    `json:"route"`
	Output       string    `json:"output"`
	Template     string    `json:"template"`
	Hash         string    `json:"hash"`
	Checksum     string    `json:"checksum"`
	LastModified time.Time `json:"last_modified"`
	RenderedAt   time.Time `json:"rendered_at"`
}

type manifestAsset struct {
	Key      string    `json:"key"`
	Theme    string    `json:"theme"`
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	CopiedAt time.Time `json:"copied_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version:     manifestFileVersion,
		Pages:       map[string]manifestPage{},
		Assets:      map[string]manifestAsset{},
		Metadata:    map[string]json.RawMessage{},
		GeneratedAt: time.Time{},
	}
}

// manifestFile is the on-disk shape: pages and assets are sorted slices so
// consecutive builds produce byte-identical manifests for identical inputs.
type manifestFile struct {
	Version     int                        `json:"version"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Pages       []manifestPage             `json:"pages"`
	Assets      []manifestAsset            `json:"assets"`
	Metadata    map[string]json.RawMessage `json:"metadata,omitempty"`
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var file manifestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if file.Version > manifestFileVersion {
		// Unknown future format, rebuild from scratch rather than guess.
		return newBuildManifest(), nil
	}
	manifest := newBuildManifest()
	manifest.GeneratedAt = file.GeneratedAt
	if file.Version != 0 {
		manifest.Version = file.Version
	}
	for _, entry := range file.Pages {
		manifest.setPage(entry)
	}
	for _, entry := range file.Assets {
		manifest.setAsset(entry)
	}
	if len(file.Metadata) > 0 {
		manifest.Metadata = file.Metadata
	}
	return manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	cloned := *m
	if cloned.Version == 0 {
		cloned.Version = manifestFileVersion
	}
	if cloned.Pages == nil {
		cloned.Pages = map[string]manifestPage{}
	}
	if cloned.Assets == nil {
		cloned.Assets = map[string]manifestAsset{}
	}
	if cloned.Metadata == nil {
		cloned.Metadata = map[string]json.RawMessage{}
	}
	ordered := manifestFile{
		Version:     cloned.Version,
		GeneratedAt: cloned.GeneratedAt,
		Metadata:    cloned.Metadata,
	}
	if len(cloned.Pages) > 0 {
		ordered.Pages = make([]manifestPage, 0, len(cloned.Pages))
		for _, entry := range cloned.Pages {
			ordered.Pages = append(ordered.Pages, entry)
		}
		sort.Slice(ordered.Pages, func(i, j int) bool {
			if ordered.Pages[i].Locale == ordered.Pages[j].Locale {
				return ordered.Pages[i].Slug < ordered.Pages[j].Slug
			}
			return ordered.Pages[i].Locale < ordered.Pages[j].Locale
		})
	}
	if len(cloned.Assets) > 0 {
		ordered.Assets = make([]manifestAsset, 0, len(cloned.Assets))
		for _, entry := range cloned.Assets {
			ordered.Assets = append(ordered.Assets, entry)
		}
		sort.Slice(ordered.Assets, func(i, j int) bool {
			return ordered.Assets[i].Key < ordered.Assets[j].Key
		})
	}
	return json.MarshalIndent(ordered, "", "  ")
}

func (m *buildManifest) pageKey(locale, slug string) string {
	return strings.ToLower(strings.TrimSpace(locale)) + "|" + strings.ToLower(strings.TrimSpace(slug))
}

func (m *buildManifest) assetKey(theme, source string) string {
	return strings.ToLower(strings.TrimSpace(theme)) + "::" + strings.TrimSpace(source)
}

func (m *buildManifest) lookupPage(locale, slug string) (manifestPage, bool) {
	if m == nil || len(m.Pages) == 0 {
		return manifestPage{}, false
	}
	entry, ok := m.Pages[m.pageKey(locale, slug)]
	return entry, ok
}

func (m *buildManifest) setPage(entry manifestPage) {
	if m == nil {
		return
	}
	if m.Pages == nil {
		m.Pages = map[string]manifestPage{}
	}
	m.Pages[m.pageKey(entry.Locale, entry.Slug)] = entry
}

func (m *buildManifest) shouldSkipPage(locale, slug, hash, output string) bool {
	entry, ok := m.lookupPage(locale, slug)
	if !ok {
		return false
	}
	if entry.Hash != hash {
		return false
	}
	if strings.TrimSpace(entry.Output) != strings.TrimSpace(output) {
		return false
	}
	return true
}

func (m *buildManifest) lookupAsset(theme, source string) (manifestAsset, bool) {
	if m == nil || len(m.Assets) == 0 {
		return manifestAsset{}, false
	}
	entry, ok := m.Assets[m.assetKey(theme, source)]
	return entry, ok
}

func (m *buildManifest) setAsset(entry manifestAsset) {
	if m == nil {
		return
	}
	if m.Assets == nil {
		m.Assets = map[string]manifestAsset{}
	}
	key := strings.ToLower(strings.TrimSpace(entry.Key))
	if key == "" {
		key = m.assetKey(entry.Theme, entry.Source)
		entry.Key = key
	}
	m.Assets[key] = entry
}

func (m *buildManifest) shouldSkipAsset(theme, source, checksum, output string) bool {
	entry, ok := m.lookupAsset(theme, source)
	if !ok {
		return false
	}
	if entry.Checksum != checksum {
		return false
	}
	if strings.TrimSpace(entry.Output) != strings.TrimSpace(output) {
		return false
	}
	return true
}

// engineHash returns the recorded fingerprint of the rendering inputs that
// page hashes cannot see: base URL, theme identity, math mode.
func (m *buildManifest) engineHash() string {
	if m == nil || len(m.Metadata) == 0 {
		return ""
	}
	raw, ok := m.Metadata[manifestEngineKey]
	if !ok {
		return ""
	}
	var hash string
	if err := json.Unmarshal(raw, &hash); err != nil {
		return ""
	}
	return hash
}

func (m *buildManifest) setEngineHash(hash string) {
	if m == nil {
		return
	}
	if m.Metadata == nil {
		m.Metadata = map[string]json.RawMessage{}
	}
	raw, err := json.Marshal(hash)
	if err != nil {
		return
	}
	m.Metadata[manifestEngineKey] = raw
}

// resetIfEngineChanged drops recorded pages and assets when the rendering
// inputs changed. Skipping against entries produced by a different engine
// configuration would leave stale HTML in the output tree.
func (m *buildManifest) resetIfEngineChanged(hash string) bool {
	if m == nil {
		return false
	}
	if m.engineHash() == hash {
		return false
	}
	m.Pages = map[string]manifestPage{}
	m.Assets = map[string]manifestAsset{}
	m.setEngineHash(hash)
	return true
}

func (m *buildManifest) prunePages(keys map[string]struct{}) {
	if m == nil || len(m.Pages) == 0 {
		return
	}
	for key := range m.Pages {
		if _, ok := keys[key]; !ok {
			delete(m.Pages, key)
		}
	}
}

func (m *buildManifest) pruneAssets(keys map[string]struct{}) {
	if m == nil || len(m.Assets) == 0 {
		return
	}
	for key := range m.Assets {
		if _, ok := keys[key]; !ok {
			delete(m.Assets, key)
		}
	}
}
