package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a Definition from a JSON or YAML file.
func Load(path string) (Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return Definition{}, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	d, err := Decode(f, ext)
	if err != nil {
		return Definition{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return d, nil
}

// Decode reads from r to decode a Definition in the given format.
func Decode(r io.Reader, format string) (Definition, error) {
	var d Definition
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return d, err
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return d, err
		}
	default:
		return d, fmt.Errorf("unsupported format: %s", format)
	}
	return d, nil
}
