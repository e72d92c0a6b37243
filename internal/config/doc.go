// Package config handles localeroute.yaml parsing and validation.
//
// # Configuration File
//
// A localeroute.yaml file sits at the project root:
//
//	default_lang: en
//	supported_langs: [en, fr]
//	routes:
//	  dir: routes
//	  auto_reload:
//	    enabled: true
//	views:
//	  source: fs
//	  dir: views
//	  extension: html
//	server:
//	  listen: ":8080"
//	logging:
//	  level: info
//	  format: json
//
// Fields can be overridden with LOCALEROUTE_ environment variables named
// after their section, for example LOCALEROUTE_SERVER_LISTEN,
// LOCALEROUTE_ROUTES_AUTO_RELOAD_ENABLED or LOCALEROUTE_SUPPORTED_LANGS=en,fr.
// Variables that are unset or empty leave the file value in place.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    errors.Print(os.Stderr, err)
//	    os.Exit(1)
//	}
//
//	fmt.Println("Listening on", cfg.Server.Listen)
package config
