// Package errors provides coded, actionable error messages for routegen.
//
// Library code in pkg/routes returns plain sentinel errors. The CLI and the dev
// server convert them with FromError into an *Error carrying:
//   - a unique code (e.g., "R001")
//   - a short message and a longer explanation
//   - a fix hint and a documentation URL
//
// # Error Codes
//
//	R001  pages directory not found
//	R002  special file check failed
//	R003  generated file write failed
//	R004  invalid exclude pattern
//	R005  invalid configuration
//	R006  pages folder unreadable
//	R009  route generation failed
//	R010  generated file out of date
//	R020  publishing failed
//	R030  dev server failed
//	R031  file watcher failed
//
// # Usage
//
//	if _, err := compiler.Compile(ctx); err != nil {
//	    errors.Print(os.Stderr, errors.FromError(err, errors.CodeCompileFailed))
//	}
//
//	// Output:
//	// ERROR R001: Pages directory not found
//	//
//	//   src/pages
//	//
//	//   The pages root does not exist or is not a directory, so no routes can
//	//   be discovered.
//	//
//	//   Hint: Create the folder or point pages_dir in routegen.yaml at your pages.
package errors
