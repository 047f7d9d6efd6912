package sessionfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/climbr-etl/internal/domain"
)

// TemplateName returns the file name for a new session log: the date alone
// for the home gym, otherwise the date plus the gym alias. A non-empty
// override replaces both.
func TemplateName(date, alias, override string) string {
	if override != "" {
		return strings.TrimSuffix(override, filepath.Ext(override)) + ".yaml"
	}
	loc, err := domain.LookupLocationAlias(alias)
	if alias == "" || (err == nil && loc.Name == domain.HomeLocation) {
		return date + ".yaml"
	}
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(alias)), " ", "_")
	return date + "_" + slug + ".yaml"
}

// WriteTemplate writes tmpl as YAML into dir/name. An existing file is only
// replaced when force is set.
func WriteTemplate(dir, name string, tmpl domain.SessionTemplate, force bool) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tmpl); err != nil {
		return "", fmt.Errorf("encode template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode template: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create input dir: %w", err)
	}
	path := filepath.Join(dir, name)
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return "", fmt.Errorf("create session log: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return "", fmt.Errorf("write session log: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write session log: %w", err)
	}
	return path, nil
}
