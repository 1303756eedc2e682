// Package cli implements the httpintercept command-line interface.
//
// Commands work on interception bundles (see package bundle):
//
//	httpintercept validate bundles/*.json
//	httpintercept list 'bundles/**/*.yaml'
//	httpintercept match --method POST --url https://api.example.com/token \
//	    --data 'grant_type=client_credentials' bundles/auth.json
//
// Bundle arguments may be omitted when HTTPINTERCEPT_BUNDLES is set.
package cli
