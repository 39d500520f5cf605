// Package config defines the application configuration structure and
// loading logic. Configuration is read from an optional YAML file and
// from MEDIQA_-prefixed environment variables, then validated before
// any component starts.
package config
