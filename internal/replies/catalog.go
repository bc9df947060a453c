package replies

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyCatalog is returned when a catalog defines no keyword groups.
var ErrEmptyCatalog = errors.New("replies: catalog has no groups")

type catalogFile struct {
	Groups  []catalogGroup `yaml:"groups"`
	Default catalogReply   `yaml:"default"`
}

type catalogGroup struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
	Buttons  []Button `yaml:"buttons"`
}

type catalogReply struct {
	Reply   string   `yaml:"reply"`
	Buttons []Button `yaml:"buttons"`
}

// LoadCatalog reads a YAML reply catalog from path.
func LoadCatalog(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replies: read catalog: %w", err)
	}
	t, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("replies: catalog %s: %w", path, err)
	}
	return t, nil
}

// ParseCatalog builds a Table from YAML. Group order in the document is the
// evaluation order. Unknown fields are rejected.
func ParseCatalog(data []byte) (*Table, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("replies: decode catalog: %w", err)
	}
	if len(file.Groups) == 0 {
		return nil, ErrEmptyCatalog
	}

	groups := make([]Group, 0, len(file.Groups))
	for _, g := range file.Groups {
		groups = append(groups, Group{
			Name:     g.Name,
			Keywords: g.Keywords,
			Reply:    Reply{Text: g.Reply, Buttons: g.Buttons},
		})
	}
	return NewTable(groups, Reply{Text: file.Default.Reply, Buttons: file.Default.Buttons})
}
