// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup, ensuring the daemon never
// runs with partial, malformed, or missing configuration.
//
// Structural rules (`required`, `hostname_port`, port ranges) live on the
// struct tags in model.go and internal/webmail; cross-field rules such as
// the des_key length live in webmail.Config.Validate, called right after
// this check.
package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
