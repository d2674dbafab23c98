package metadata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk shape of a metadata catalog:
//
//	tables:
//	  1: users
//	fields:
//	  4: "ga:date"
//	  5: "ga:pagePath"
type file struct {
	Tables map[int]string `yaml:"tables"`
	Fields map[int]string `yaml:"fields"`
}

// Load reads a metadata catalog from a YAML file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse metadata file %s: %w", path, err)
	}
	return NewStore(f.Tables, f.Fields)
}
