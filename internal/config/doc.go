// Package config loads routegen configuration.
//
// Values come from routegen.yaml at the project root, ROUTEGEN_* environment
// variables and command-line flags bound by the CLI, with flags winning.
//
// # Configuration File Structure
//
//	pages_dir: src/pages
//	output: src/generated/routes.jsx
//	exclude:
//	  - "**/components/*.jsx"
//	extensions: [.jsx, .tsx]
//	not_found: /404
//	concurrency: 4
//	manifest: src/generated/routes.yaml
//	dev:
//	  host: localhost
//	  port: 3100
//	  reload: true
//	log:
//	  level: info
//	  filename: .routegen.log
//	publish:
//	  s3:
//	    bucket: my-bucket
//	    prefix: web/routes
//	    region: eu-west-1
//
// # Usage
//
//	v, err := config.NewViper(afero.NewOsFs(), ".", "")
//	if err != nil {
//	    return err
//	}
//	cfg, err := config.Load(v, ".")
//	if err != nil {
//	    return err
//	}
//	compiler := routes.NewCompiler(afero.NewOsFs(), cfg.CompilerOptions())
package config
