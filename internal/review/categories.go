package review

import (
	"fmt"
	"strings"
)

// Category identifies one review dimension applied to analyzed code.
type Category string

const (
	NullReference      Category = "null_reference"
	ExceptionHandling  Category = "exception_handling"
	ResourceManagement Category = "resource_management"
	Performance        Category = "performance"
	Security           Category = "security"
	NamingConvention   Category = "naming_convention"
	CodeDocumentation  Category = "code_documentation"
	HardcodingToConfig Category = "hardcoding_to_config"
)

// categoryTemplate is the prompt material for one category.
type categoryTemplate struct {
	name        string
	description string
	rules       []string
}

var categoryTemplates = map[Category]categoryTemplate{
	NullReference: {
		name:        "Null reference checks",
		description: "add validation that prevents null reference exceptions",
		rules: []string{
			"null-check method parameters",
			"use null-conditional operators (?., ??)",
			"throw ArgumentNullException for invalid input",
		},
	},
	ExceptionHandling: {
		name:        "Exception handling",
		description: "handle errors with appropriate exception logic",
		rules: []string{
			"wrap failure-prone operations in try-catch",
			"catch specific exception types",
			"write clear exception messages",
			"use finally blocks for cleanup",
		},
	},
	ResourceManagement: {
		name:        "Resource management",
		description: "release IDisposable resources correctly",
		rules: []string{
			"use using statements for automatic disposal",
			"verify IDisposable implementations",
			"close file and database connections explicitly",
		},
	},
	Performance: {
		name:        "Performance",
		description: "remove unnecessary work and improve efficiency",
		rules: []string{
			"avoid redundant ToList() in LINQ chains",
			"use StringBuilder for string concatenation",
			"eliminate unnecessary loops",
			"cache repeated computations",
		},
	},
	Security: {
		name:        "Security",
		description: "remove security vulnerabilities",
		rules: []string{
			"prevent SQL injection with parameterized queries",
			"validate external input",
			"protect sensitive data",
			"check authorization before privileged operations",
		},
	},
	NamingConvention: {
		name:        "Naming conventions",
		description: "follow C# naming conventions",
		rules: []string{
			"PascalCase for classes, methods, properties",
			"camelCase for locals and parameters",
			"_camelCase for private fields",
			"use meaningful names",
		},
	},
	CodeDocumentation: {
		name:        "XML documentation comments",
		description: "document public API with XML doc comments (///)",
		rules: []string{
			"add /// comments to every public class and method",
			"<summary> with a one-line description",
			"<param> for each parameter",
			"<returns> for return values",
			"<exception> for thrown exceptions",
		},
	},
	HardcodingToConfig: {
		name:        "Hardcoding to configuration",
		description: "move hardcoded settings into external configuration",
		rules: []string{
			"connection strings belong in the ConnectionStrings section of appsettings.json",
			"API URLs belong in configuration, not source",
			"replace magic numbers with constants or enums",
			"inject IConfiguration instead of reading literals",
		},
	},
}

// DefaultCategories is the fixed ordered set applied when the caller does
// not choose. HardcodingToConfig is opt-in.
func DefaultCategories() []Category {
	return []Category{
		NullReference,
		ExceptionHandling,
		ResourceManagement,
		Performance,
		Security,
		NamingConvention,
		CodeDocumentation,
	}
}

// ParseCategory validates a category identifier.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if _, ok := categoryTemplates[c]; !ok {
		return "", fmt.Errorf("unknown review category: %q", s)
	}
	return c, nil
}

// ParseCategories validates a list of identifiers, preserving order.
func ParseCategories(names []string) ([]Category, error) {
	out := make([]Category, 0, len(names))
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Names converts a category list to its identifier strings.
func Names(categories []Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

// DisplayName returns the human-readable label for a category identifier,
// falling back to the identifier itself when unknown.
func DisplayName(id string) string {
	if t, ok := categoryTemplates[Category(id)]; ok {
		return t.name
	}
	return id
}
