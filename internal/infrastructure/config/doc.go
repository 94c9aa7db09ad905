// Package config loads and validates Lumen Core configuration.
//
// Configuration is read from a YAML file with hardcoded defaults applied
// first and LUMEN_* environment variables applied last. A single *Config is
// built during bootstrap and handed to each component as its own section;
// components never read the environment themselves.
package config
