package markdowncmd

// FeatureGates exposes runtime feature toggles required by markdown command handlers.
// Callers supply closures reading from the runtime config so handlers stay decoupled
// from configuration while honouring feature flags.
type FeatureGates struct {
	MarkdownEnabled func() bool
	CatalogEnabled  func() bool
}

func (g FeatureGates) markdownEnabled() bool {
	if g.MarkdownEnabled == nil {
		return true
	}
	return g.MarkdownEnabled()
}

func (g FeatureGates) catalogEnabled() bool {
	if g.CatalogEnabled == nil {
		return true
	}
	return g.CatalogEnabled()
}
