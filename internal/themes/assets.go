package themes

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	gotheme "github.com/goliatone/go-theme"
)

// AssetResolver abstracts theme asset lookups for tests and production.
type AssetResolver interface {
	Open(asset string) (io.ReadCloser, error)
}

// FileSystemAssetResolver resolves assets from a theme package root.
type FileSystemAssetResolver struct {
	FS fs.FS
}

// Open returns a reader for the requested asset relative to the theme root.
func (r FileSystemAssetResolver) Open(asset string) (io.ReadCloser, error) {
	if r.FS == nil {
		return nil, fmt.Errorf("themes: filesystem resolver not configured")
	}
	clean, err := cleanAssetPath(asset)
	if err != nil {
		return nil, err
	}
	file, err := r.FS.Open(clean)
	if err != nil {
		return nil, fmt.Errorf("themes: open asset %s: %w", asset, err)
	}
	return file, nil
}

func cleanAssetPath(asset string) (string, error) {
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return "", fmt.Errorf("themes: asset path required")
	}
	clean := path.Clean(filepath.ToSlash(asset))
	if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "", fmt.Errorf("themes: asset traversal detected in %s", asset)
	}
	return clean, nil
}

// CollectAssets lists the asset files a theme contributes to the build,
// relative to the theme package root. Assets declared through the go-theme
// manifest win; the theme.json assets block is the fallback. The result is
// sorted so successive builds publish in a stable order.
func CollectAssets(theme *Theme, selection *gotheme.Selection) []string {
	if selection != nil && selection.Manifest != nil {
		if assets := collectManifestAssets(selection); len(assets) > 0 {
			return assets
		}
	}
	if theme == nil || theme.Config.Assets == nil {
		return nil
	}

	var assets []string
	base := ""
	if theme.Config.Assets.BasePath != nil {
		base = strings.TrimSpace(*theme.Config.Assets.BasePath)
	}

	appendAssets := func(list []string) {
		for _, item := range list {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if base != "" {
				assets = append(assets, path.Join(base, filepath.ToSlash(item)))
			} else {
				assets = append(assets, filepath.ToSlash(item))
			}
		}
	}

	appendAssets(theme.Config.Assets.Styles)
	appendAssets(theme.Config.Assets.Scripts)
	appendAssets(theme.Config.Assets.Images)

	sort.Strings(assets)
	return assets
}

func collectManifestAssets(selection *gotheme.Selection) []string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}

	assets := selection.Manifest.Assets.Files
	if variant := strings.TrimSpace(selection.Variant); variant != "" {
		if v, ok := selection.Manifest.Variants[variant]; ok && len(v.Assets.Files) > 0 {
			merged := make(map[string]string, len(selection.Manifest.Assets.Files)+len(v.Assets.Files))
			for key, file := range selection.Manifest.Assets.Files {
				merged[key] = file
			}
			for key, file := range v.Assets.Files {
				merged[key] = file
			}
			assets = merged
		}
	}

	seen := map[string]struct{}{}
	var out []string
	for _, asset := range assets {
		asset = strings.TrimPrefix(strings.TrimSpace(asset), "/")
		if asset == "" {
			continue
		}
		if _, ok := seen[asset]; ok {
			continue
		}
		seen[asset] = struct{}{}
		out = append(out, filepath.ToSlash(asset))
	}
	sort.Strings(out)
	return out
}

// DetectAssetContentType maps an asset path to the MIME type used when
// publishing to artifact storage.
func DetectAssetContentType(asset string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset), "."))
	switch ext {
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "json":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "ico":
		return "image/x-icon"
	case "woff":
		return "font/woff"
	case "woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
