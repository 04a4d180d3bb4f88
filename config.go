package blog

import "github.com/goliatone/go-blog/internal/runtimeconfig"

var (
	ErrContentDirRequired         = runtimeconfig.ErrContentDirRequired
	ErrMathModeInvalid            = runtimeconfig.ErrMathModeInvalid
	ErrTOCDepthInvalid            = runtimeconfig.ErrTOCDepthInvalid
	ErrSiteBaseURLInvalid         = runtimeconfig.ErrSiteBaseURLInvalid
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrCatalogDSNRequired         = runtimeconfig.ErrCatalogDSNRequired
	ErrCatalogDriverUnknown       = runtimeconfig.ErrCatalogDriverUnknown
	ErrServerAddrRequired         = runtimeconfig.ErrServerAddrRequired
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	SiteConfig       = runtimeconfig.SiteConfig
	ContentConfig    = runtimeconfig.ContentConfig
	MarkdownConfig   = runtimeconfig.MarkdownConfig
	MathConfig       = runtimeconfig.MathConfig
	TOCConfig        = runtimeconfig.TOCConfig
	RenderConfig     = runtimeconfig.RenderConfig
	ThemeConfig      = runtimeconfig.ThemeConfig
	GeneratorConfig  = runtimeconfig.GeneratorConfig
	CatalogConfig    = runtimeconfig.CatalogConfig
	ServerConfig     = runtimeconfig.ServerConfig
	CacheConfig      = runtimeconfig.CacheConfig
	NavigationConfig = runtimeconfig.NavigationConfig
	Features         = runtimeconfig.Features
	LoggingConfig    = runtimeconfig.LoggingConfig
)

// DefaultConfig returns defaults that render a site out of the box with the
// bundled theme.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
