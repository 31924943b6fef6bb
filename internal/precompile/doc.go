// Package precompile writes managed assets under their digest paths for
// production serving.
//
// Every logical path the catalog knows is resolved, its body (bundle
// members concatenated) written to <output>/<prefix>/<digest path>, and a
// manifest mapping logical to digest paths written alongside. At startup
// the manifest lets the resolver skip the catalog entirely.
//
// # Usage
//
//	p := precompile.New(cfg, cfg.NewCatalog(), precompile.Options{Gzip: true})
//	result, err := p.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Wrote %d files in %s\n", result.Files, result.Duration)
//
// # Output Structure
//
//	public/
//	└── assets/
//	    ├── application-1f0e3dad99908345f7439f8ffabdffc4.js
//	    ├── application-1f0e3dad99908345f7439f8ffabdffc4.js.gz
//	    ├── logo-8d777f385d3dfec8815d20f7496026dc.png
//	    └── manifest.json
//
// # Manifest
//
//	{
//	  "assets": {
//	    "application.js": "application-1f0e3dad99908345f7439f8ffabdffc4.js",
//	    "logo.png": "logo-8d777f385d3dfec8815d20f7496026dc.png"
//	  }
//	}
package precompile
