// Package id generates the identifiers used across httpintercept.
//
// Registration IDs are UUID v7, so they sort by creation time. Matcher
// identities, which only need to be unique, are UUID v4.
package id
