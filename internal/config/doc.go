// Package config provides centralized configuration management for the bond
// screener. Values come from three layers, later layers winning:
//
//	1. Default() values
//	2. An optional YAML file (config.yaml, configs/config.yaml, or the path in
//	   BONDSCREEN_CONFIG)
//	3. Environment variables prefixed with BONDSCREEN_
//
// Environment variable names follow the struct nesting:
//
//	BONDSCREEN_SERVER_PORT=9090
//	BONDSCREEN_LOGGING_LEVEL=debug
//	BONDSCREEN_DATASET_MAX_UPLOAD_BYTES=5242880
//	BONDSCREEN_DATASET_PERCENT_POLICY=reject
//	BONDSCREEN_SECURITY_ALLOWED_ORIGINS=http://a.example,http://b.example
//
// Load validates the merged result and normalizes a few fields (log format,
// sheet name, service name) before returning it.
package config
