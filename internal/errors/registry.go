package errors

import "sort"

const docBase = "https://vango.dev/docs/assetpath/errors/"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Caller Contract Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryContract,
		Message:  "Invalid prefix value",
		Detail:   "A prefix must be a literal string or a function of the asset path.",
		DocURL:   docBase + "E001",
	},
	"E002": {
		Category: CategoryContract,
		Message:  "Invalid host value",
		Detail:   "An asset host must be a literal string, a %d wildcard pattern or a function of the asset path.",
		DocURL:   docBase + "E002",
	},
	"E003": {
		Category: CategoryContract,
		Message:  "Unknown asset kind",
		Detail:   "Per-kind defaults exist for audio, font, image, javascript, stylesheet and video.",
		DocURL:   docBase + "E003",
	},
	"E004": {
		Category: CategoryContract,
		Message:  "Empty asset source",
		DocURL:   docBase + "E004",
	},

	// ============================================
	// Config Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		DocURL:   docBase + "E100",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The settings file could not be parsed.",
		DocURL:   docBase + "E101",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		DocURL:   docBase + "E102",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Expression compile failed",
		Detail:   "A computed prefix or host expression is not valid expr-lang syntax.",
		DocURL:   docBase + "E103",
	},

	// ============================================
	// Manifest Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryManifest,
		Message:  "Manifest read failed",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryManifest,
		Message:  "Invalid manifest",
		Detail:   "A manifest is a JSON object mapping logical paths to digest paths, optionally nested under \"assets\".",
		DocURL:   docBase + "E121",
	},
	"E122": {
		Category: CategoryManifest,
		Message:  "Asset not in manifest",
		DocURL:   docBase + "E122",
	},

	// ============================================
	// Precompile Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryPrecompile,
		Message:  "Precompile failed",
		DocURL:   docBase + "E140",
	},

	// ============================================
	// Server Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryServer,
		Message:  "Server failed",
		DocURL:   docBase + "E160",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
