// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the conversion lifecycle (load, decode,
// generate, write), decoupled from any specific entrypoint like the CLI.
package app
