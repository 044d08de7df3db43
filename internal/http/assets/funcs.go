package assets

import "html/template"

// FuncsOptions configures asset-related template helpers.
type FuncsOptions struct {
	Resolver    *AssetResolver
	CriticalCSS func() string
}

// Funcs returns template helpers for asset resolution and critical CSS embedding.
func Funcs(opts FuncsOptions) template.FuncMap {
	return template.FuncMap{
		"asset": func(logicalName string) string {
			return ResolveAsset(opts.Resolver, logicalName)
		},
		"criticalCSS": func() template.CSS {
			if opts.CriticalCSS == nil {
				return ""
			}
			// #nosec G203 - critical CSS is read from our own static files
			return template.CSS(opts.CriticalCSS())
		},
	}
}
