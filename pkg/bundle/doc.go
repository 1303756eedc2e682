// Package bundle loads declarative interception bundles from JSON or YAML
// files and registers them with an intercept.Options.
//
// A bundle is a versioned list of items, each describing one interception:
//
//	{
//	  "version": 1,
//	  "templateValues": {"Host": "api.example.com"},
//	  "items": [
//	    {
//	      "method": "GET",
//	      "uri": "https://{Host}/users/1",
//	      "contentFormat": "json",
//	      "contentJson": {"id": 1, "name": "Alice"}
//	    }
//	  ]
//	}
//
// String fields may contain {token} placeholders. Values come from the item,
// then the bundle, then the caller, with later sources taking precedence.
package bundle
