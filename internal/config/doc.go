// Package config loads the optional generator settings file.
//
// The file is HCL. Every attribute is optional, and a value present in the
// file only takes effect where the corresponding command-line flag was not
// given explicitly:
//
//	output_prefix         = "cell"
//	output_dir            = "out"
//	testing               = false
//	declarative_preferred = true
//
//	log {
//	  level  = "debug"
//	  format = "json"
//	}
//
//	parameter_overrides = {
//	  k_on = "1e8 * scale"
//	  n    = 250
//	}
//
// Override values may be strings or numbers; they are converted to
// expression text.
package config
