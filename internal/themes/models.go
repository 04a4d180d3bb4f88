package themes

import blogthemes "github.com/goliatone/go-blog/themes"

type (
	Theme       = blogthemes.Theme
	ThemeConfig = blogthemes.ThemeConfig
	ThemeAssets = blogthemes.ThemeAssets
)

// DefaultThemeName identifies the bundled fallback theme.
const DefaultThemeName = blogthemes.DefaultThemeName
