// Package config loads the configuration of programs built on childprocess.
//
// It uses Viper to read a YAML file, godotenv to read a .env file, and maps
// prefixed environment variables onto nested keys, so that
// CHILDPROC_PROCESS_STOP_TIMEOUT=5s sets process.stop_timeout.
//
// # Usage
//
//	var cfg config.Config
//	if err := config.LoadConfig("childproc", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	process.Configure(cfg.Process)
package config
