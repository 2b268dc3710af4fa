// Package config handles loading and validating switchbotd configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with SWITCHBOT_* environment variables
//   - Validation of required fields
//
// Cloud credentials (token and secret) should be supplied through the
// environment or entered through the API; values in the file only seed the
// credential store when it is empty.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.SwitchBot.BaseURL)
package config
