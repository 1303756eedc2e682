// Package cliconfig resolves httpintercept CLI settings.
//
// Precedence, highest first:
//
//  1. Command-line flags
//  2. Environment variables (HTTPINTERCEPT_* prefix)
//  3. Default values
//
// The source of each value is tracked so `httpintercept validate --verbose`
// can report where a setting came from.
package cliconfig
