package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog/internal/generator"
)

const (
	buildSiteMessageType    = "blog.site.build"
	diffSiteMessageType     = "blog.site.diff"
	cleanSiteMessageType    = "blog.site.clean"
	buildSitemapMessageType = "blog.site.sitemap"
)

// ResultCallback receives build results produced by generator operations. The callback is optional
// and is invoked synchronously from the handler when a BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a site command execution that produced a BuildResult.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand executes a generator build using the provided filters.
type BuildSiteCommand struct {
	Slugs          []string       `json:"slugs,omitempty"`
	Locales        []string       `json:"locales,omitempty"`
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	AssetsOnly     bool           `json:"assets_only,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures slugs and locales are well-formed.
func (m BuildSiteCommand) Validate() error {
	errs := validation.Errors{}
	if err := validateNonEmpty(m.Locales); err != nil {
		errs["locales"] = validation.NewError("blog.site.build.locale_invalid", "locales must not contain empty values")
	}
	if err := validateNonEmpty(m.Slugs); err != nil {
		errs["slugs"] = validation.NewError("blog.site.build.slug_invalid", "slugs must not contain empty values")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DiffSiteCommand performs a dry-run build to surface differences without writing artifacts.
type DiffSiteCommand struct {
	Slugs          []string       `json:"slugs,omitempty"`
	Locales        []string       `json:"locales,omitempty"`
	Force          bool           `json:"force,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (DiffSiteCommand) Type() string { return diffSiteMessageType }

// Validate ensures slugs and locales are well-formed.
func (m DiffSiteCommand) Validate() error {
	errs := validation.Errors{}
	if err := validateNonEmpty(m.Locales); err != nil {
		errs["locales"] = validation.NewError("blog.site.diff.locale_invalid", "locales must not contain empty values")
	}
	if err := validateNonEmpty(m.Slugs); err != nil {
		errs["slugs"] = validation.NewError("blog.site.diff.slug_invalid", "slugs must not contain empty values")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CleanSiteCommand clears generator artifacts from the output directory.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }

// BuildSitemapCommand regenerates sitemap.xml without rebuilding pages.
type BuildSitemapCommand struct{}

// Type implements command.Message.
func (BuildSitemapCommand) Type() string { return buildSitemapMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (BuildSitemapCommand) Validate() error { return nil }

// FeatureGates exposes runtime switches used to guard handler execution.
type FeatureGates struct {
	GeneratorEnabled func() bool
}

func (g FeatureGates) generatorEnabled() bool {
	if g.GeneratorEnabled == nil {
		return true
	}
	return g.GeneratorEnabled()
}

func validateNonEmpty(values []string) error {
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			return validation.NewError("blog.site.value_empty", "values must not be empty")
		}
	}
	return nil
}
