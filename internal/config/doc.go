// Package config provides configuration parsing for assetpath projects.
//
// The configuration is stored in assetpath.json (comments and trailing
// commas allowed) or assetpath.yaml at the project root. Relative paths
// are resolved against the directory holding the file.
//
// # Configuration File Structure
//
//	{
//	  "environment": "production",
//	  "digest": true,
//	  "prefix": "/assets",
//	  "host": "assets%d.example.com",
//	  "protocol": "https",
//	  "manifest": "public/assets/manifest.json",
//	  "public": "public",
//	  "catalog": {
//	    "root": "app/assets",
//	    "paths": ["javascripts", "stylesheets", "images"],
//	    "bundles": {"application.js": ["vendor.js", "app.js"]}
//	  },
//	  "kinds": {"javascript": {"dir": "js"}},
//	  "storage": {"kind": "s3", "bucket": "${ASSET_BUCKET}", "region": "eu-west-1"},
//	  "server": {"addr": "localhost:3000", "compress": true},
//	  "precompile": {"output": "public"},
//	  "development": {"debug": true, "host": false}
//	}
//
// The prefix and host settings also accept an expr-lang expression over
// the asset path:
//
//	"host": {"expr": "'cdn' + string(shard(path, 2)) + '.example.com'"}
//
// String settings may reference environment variables as ${VAR} or
// ${VAR:-default}. ASSETPATH_ENV selects the override section.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	settings, err := cfg.Settings(cfg.NewCatalog())
package config
