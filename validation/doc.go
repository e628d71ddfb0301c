// Package validation checks configuration structs and launch inputs.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as
// INVALID_INPUT AppErrors carrying per-field details.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.NotEmpty("argv", args).NoNUL("argv[0]", args[0])
//	if err := v.Validate(); err != nil { ... }
package validation
