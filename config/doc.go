// Package config loads and validates sqlitekit configuration.
//
// Values are layered: built-in defaults, then a YAML file, then
// SQLITEKIT_* environment variables. Keep encryption keys in the
// environment rather than in the file.
//
// Usage:
//
//	cfg, err := config.Load("sqlitekit.yaml")
//	if err != nil {
//	    return err
//	}
//	opts, err := cfg.Database.OpenOptions(logger)
//	conn, err := database.Open(cfg.Database.Path, opts...)
package config
