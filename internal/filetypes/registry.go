package filetypes

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Category is one class of accepted uploads: the MIME prefixes it covers and
// the per-file size ceiling.
type Category struct {
	Name         string   `yaml:"name"`
	MimePrefixes []string `yaml:"mime_prefixes"`
	MaxSizeMB    int64    `yaml:"max_size_mb"`
}

// Registry holds the upload acceptance policy, loaded from the embedded YAML
// at startup. The policy is read-only after construction.
type Registry struct {
	categories []Category
}

// NewRegistry loads the embedded upload policy
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/uploads.yaml")
	if err != nil {
		return nil, fmt.Errorf("read upload policy: %w", err)
	}

	var doc struct {
		Categories []Category `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse upload policy: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("upload policy defines no categories")
	}

	return &Registry{categories: doc.Categories}, nil
}

// Check validates a declared MIME type and size against the policy.
// Returns nil when some category accepts the file.
func (r *Registry) Check(mimeType string, size int64) error {
	if size < 0 {
		return fmt.Errorf("negative file size")
	}

	cat := r.match(mimeType)
	if cat == nil {
		return fmt.Errorf("file type %q is not accepted", mimeType)
	}

	if limit := cat.MaxSizeMB << 20; size > limit {
		return fmt.Errorf("%s files are limited to %d MB", cat.Name, cat.MaxSizeMB)
	}

	return nil
}

func (r *Registry) match(mimeType string) *Category {
	mimeType = strings.ToLower(mimeType)
	for i := range r.categories {
		for _, prefix := range r.categories[i].MimePrefixes {
			if strings.HasPrefix(mimeType, prefix) {
				return &r.categories[i]
			}
		}
	}
	return nil
}
