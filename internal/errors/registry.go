package errors

import "sort"

// Registered error codes.
const (
	CodePagesRootNotFound = "R001"
	CodeProbeFailed       = "R002"
	CodeWriteFailed       = "R003"
	CodeInvalidPattern    = "R004"
	CodeInvalidConfig     = "R005"
	CodeDiscoverFailed    = "R006"
	CodeCompileFailed     = "R009"
	CodeOutOfDate         = "R010"
	CodePublishFailed     = "R020"
	CodeDevServer         = "R030"
	CodeWatcher           = "R031"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Compilation Errors (R001-R009)
	// ============================================

	CodePagesRootNotFound: {
		Category:   CategoryConfig,
		Message:    "Pages directory not found",
		Detail:     "The pages root does not exist or is not a directory, so no routes can be discovered.",
		Suggestion: "Create the folder or point pages_dir in routegen.yaml at your pages.",
		DocURL:     "https://routegen.dev/docs/errors/R001",
	},
	CodeProbeFailed: {
		Category:   CategoryFS,
		Message:    "Could not check for layout, error or loading files",
		Detail:     "Checking a folder for its special files failed for a reason other than the file being absent.",
		Suggestion: "Check the permissions of the folder named in the error.",
		DocURL:     "https://routegen.dev/docs/errors/R002",
	},
	CodeWriteFailed: {
		Category:   CategoryFS,
		Message:    "Could not write the generated routes file",
		Detail:     "The output folder was created if missing, but writing the file itself failed.",
		Suggestion: "Check that the output path is writable and not a directory.",
		DocURL:     "https://routegen.dev/docs/errors/R003",
	},
	CodeInvalidPattern: {
		Category:   CategoryConfig,
		Message:    "Invalid exclude pattern",
		Detail:     "An exclude glob could not be compiled. Patterns use \"*\" within one folder and \"**\" across folders.",
		Suggestion: "Fix the pattern in the exclude list, e.g. \"**/components/*.jsx\".",
		DocURL:     "https://routegen.dev/docs/errors/R004",
	},
	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is missing or out of range.",
		DocURL:   "https://routegen.dev/docs/errors/R005",
	},
	CodeDiscoverFailed: {
		Category:   CategoryFS,
		Message:    "Could not read the pages folder",
		Detail:     "The pages root exists but listing it or one of its folders failed.",
		Suggestion: "Check the permissions of the pages folder and its subfolders.",
		DocURL:     "https://routegen.dev/docs/errors/R006",
	},
	CodeCompileFailed: {
		Category: CategoryCLI,
		Message:  "Route generation failed",
		Detail:   "Generating the route table stopped before the output was written.",
		DocURL:   "https://routegen.dev/docs/errors/R009",
	},

	// ============================================
	// Check Errors (R010-R019)
	// ============================================

	CodeOutOfDate: {
		Category:   CategoryCheck,
		Message:    "Generated routes file is out of date",
		Detail:     "The file on disk differs from what the current pages produce.",
		Suggestion: "Run `routegen gen` and commit the result.",
		DocURL:     "https://routegen.dev/docs/errors/R010",
	},

	// ============================================
	// Publish Errors (R020-R029)
	// ============================================

	CodePublishFailed: {
		Category:   CategoryPublish,
		Message:    "Publishing generated artifacts failed",
		Detail:     "Uploading the generated routes file or manifest to object storage failed.",
		Suggestion: "Check publish.s3.bucket, the region and your AWS credentials.",
		DocURL:     "https://routegen.dev/docs/errors/R020",
	},

	// ============================================
	// Dev Errors (R030-R039)
	// ============================================

	CodeDevServer: {
		Category:   CategoryDev,
		Message:    "Dev server failed",
		Detail:     "The reload server could not listen on the configured address.",
		Suggestion: "Pick another port with --port or dev.port.",
		DocURL:     "https://routegen.dev/docs/errors/R030",
	},
	CodeWatcher: {
		Category: CategoryDev,
		Message:  "File watcher failed",
		Detail:   "The pages folder could not be watched for changes.",
		DocURL:   "https://routegen.dev/docs/errors/R031",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered codes, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
