// Package config loads converter settings from defaults, a YAML file, .env
// files, MEGREP_* environment variables and command line flags, in that
// order of increasing precedence.
//
//	cfg, err := config.Load("", map[string]interface{}{"batch-size": 100})
//
// Supported environment variables include MEGREP_PROJECT_ROOT,
// MEGREP_CONTENTS_DIR, MEGREP_AVIF_DIR, MEGREP_WEBP_DIR,
// MEGREP_SUPPORTED_FORMATS (comma separated), MEGREP_AVIF_QUALITY,
// MEGREP_WEBP_QUALITY, MEGREP_BATCH_SIZE, MEGREP_WORKERS,
// MEGREP_NOTIFICATIONS_ENABLED and MEGREP_LOG_LEVEL.
package config
