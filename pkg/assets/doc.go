// Package assets resolves logical asset references into public paths.
//
// A source such as "main.js", "logo.jpg" or "fonts/icons.eot?#iefix" is
// resolved by one of three strategies:
//
//   - manifest: the logical path has an entry in a precompiled Manifest
//   - asset: the upstream Environment recognises the logical path
//   - file: anything else, served untouched from the public directory
//
// Every strategy runs the same pipeline: the base path is prefixed, the
// query is extended (a modification-time token for files, body=1 for
// managed assets) and finally an asset host and protocol are applied.
// Absolute references ("https://…", "//cdn…", "cid:…") are returned as-is.
//
//	manifest, _ := assets.LoadManifest("public/assets/manifest.json")
//	settings := assets.DefaultSettings()
//	settings.Manifest = manifest
//	settings.Host = assets.Literal("assets%d.example.com")
//	helper, err := assets.New(settings)
//	if err != nil {
//		return err
//	}
//
//	helper.JavascriptPath("application", assets.Options{})
//	// "http://assets2.example.com/assets/application-9f86d081.js", nil
//
//	helper.ImagePath("logo.png", assets.Options{Host: assets.Disabled()})
//	// "/images/logo.png?1700000000", nil
//
// Per-call Options always win over Settings. A nil *bool or an unset Value
// inherits; a pointer to false or Disabled() switches the feature off for
// that call.
package assets
