// Package config holds the runtime's file and environment configuration.
//
// Values are layered by viper: built-in defaults, then an optional YAML
// file, then MPIRT_* environment variables (MPIRT_LIBRARY_PATH,
// MPIRT_LOGGING_LEVEL, ...), then command-line flags bound by the caller.
//
//	library:
//	  path: /opt/openmpi/lib/libmpi.so
//	  caller_thread: false
//	logging:
//	  level: info
//	  format: json
package config
