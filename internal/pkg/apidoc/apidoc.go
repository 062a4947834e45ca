// Package apidoc loads the public OpenAPI document served under /docs/api.
package apidoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// DefaultPath is the document location relative to the project root.
const DefaultPath = "public/docs/v1/openapi.yml"

// Find returns the first existing document path below the given base paths.
func Find(basePaths ...string) (string, error) {
	for _, base := range basePaths {
		p := filepath.Join(base, DefaultPath)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("openapi document %s not found", DefaultPath)
}

// Load reads and validates an OpenAPI 3 document.
func Load(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return doc, nil
}

// Operations lists "METHOD /path" for every documented operation, with
// path parameters in fiber's ":name" form.
func Operations(doc *openapi3.T) []string {
	var out []string
	for path, item := range doc.Paths.Map() {
		for method := range item.Operations() {
			out = append(out, strings.ToUpper(method)+" "+fiberPath(path))
		}
	}
	sort.Strings(out)
	return out
}

func fiberPath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			parts[i] = ":" + strings.Trim(part, "{}")
		}
	}
	return strings.Join(parts, "/")
}
