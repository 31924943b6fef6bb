// Package errors provides structured, actionable error messages for assetpath.
//
// Every error carries a registered code that maps to a category, a short
// message and a documentation URL. Call sites add the specifics:
//
//	err := errors.New("E002").
//	    WithDetail("host value is Computed with a nil function").
//	    WithSuggestion("Use assets.Literal for fixed hosts")
//
// # Categories
//
//   - contract: the caller passed options the resolver cannot interpret
//   - config: the settings file is missing or invalid
//   - manifest: a precompiled manifest could not be read
//   - precompile: writing digested output failed
//   - server: the resolve server could not start
//
// Missing files and unknown assets are not errors. The resolver degrades
// those to a path without a cache-busting token.
//
// # Config locations
//
// Errors about settings files can point at the offending line:
//
//	ERROR E101: Invalid config file
//
//	  assetpath.yaml:4:9
//
//	       3 │ prefix: /assets
//	  →    4 │ digest: maybe
//	         │         ^
//	       5 │ host: cdn%d.example.com
package errors
