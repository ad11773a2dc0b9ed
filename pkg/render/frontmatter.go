package render

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

var delimiter = []byte("---")

// splitFrontmatter separates an optional YAML header from a template body.
// Content without a leading delimiter is returned unchanged with empty metadata.
func splitFrontmatter(content string) (map[string]any, string, error) {
	raw := []byte(content)
	if !bytes.HasPrefix(raw, delimiter) {
		return map[string]any{}, content, nil
	}

	rest := bytes.TrimLeft(bytes.TrimPrefix(raw, delimiter), "\r\n")
	if len(rest) == 0 {
		return nil, "", fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	end := bytes.Index(rest, delimiter)
	if end == -1 {
		return nil, "", fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	header := rest[:end]
	body := rest[end+len(delimiter):]
	switch {
	case bytes.HasPrefix(body, []byte("\r\n")):
		body = body[2:]
	case bytes.HasPrefix(body, []byte("\n")):
		body = body[1:]
	}

	meta := map[string]any{}
	if len(bytes.TrimSpace(header)) > 0 {
		if err := yaml.Unmarshal(header, &meta); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	return meta, string(body), nil
}

// subjectFromMeta returns the Subject (or subject) entry of a frontmatter header.
func subjectFromMeta(meta map[string]any) string {
	for _, key := range []string{"Subject", "subject"} {
		if v, ok := meta[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}
