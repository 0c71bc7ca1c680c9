// Package cli is responsible for parsing command-line arguments, validating
// user input and mapping run outcomes to exit codes. It merges an optional
// settings file with the flags into the application's configuration.
package cli
