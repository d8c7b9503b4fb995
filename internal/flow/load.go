package flow

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/career.yaml
var defaultsFS embed.FS

// Document is the on-disk representation of a flow definition.
type Document struct {
	Version    int         `yaml:"version" json:"version"`
	Root       NodeID      `yaml:"root" json:"root"`
	Nodes      []Node      `yaml:"nodes" json:"nodes"`
	Classifier *Classifier `yaml:"classifier,omitempty" json:"classifier,omitempty"`
}

// Definition is a validated flow table together with its classifier.
type Definition struct {
	Table      *Table
	Classifier Classifier
	// Hash is the hex SHA-256 of the source bytes.
	Hash string
}

// Load reads, parses, and validates a flow definition file.
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read flow: %w", err)
	}
	def, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes a flow definition. ext selects the format: ".json" for JSON,
// anything else for YAML.
func Parse(data []byte, ext string) (Definition, error) {
	var doc Document
	var err error
	if strings.EqualFold(ext, ".json") {
		doc, err = parseJSON(data)
	} else {
		doc, err = parseYAML(data)
	}
	if err != nil {
		return Definition{}, err
	}
	return doc.Build(data)
}

// Build validates the document and produces a Definition.
func (d Document) Build(source []byte) (Definition, error) {
	if d.Version != 0 && d.Version != 1 {
		return Definition{}, fmt.Errorf("unsupported flow version %d", d.Version)
	}
	table, err := NewTable(d.Root, d.Nodes)
	if err != nil {
		return Definition{}, err
	}
	cls := DefaultClassifier()
	if d.Classifier != nil {
		cls = *d.Classifier
		if err := cls.validate(); err != nil {
			return Definition{}, err
		}
	}
	sum := sha256.Sum256(source)
	return Definition{Table: table, Classifier: cls, Hash: hex.EncodeToString(sum[:])}, nil
}

var (
	defaultOnce sync.Once
	defaultDef  Definition
)

// Default returns the embedded career flow.
func Default() Definition {
	defaultOnce.Do(func() {
		data, err := defaultsFS.ReadFile("defaults/career.yaml")
		if err != nil {
			panic(fmt.Sprintf("read embedded flow: %v", err))
		}
		defaultDef, err = Parse(data, ".yaml")
		if err != nil {
			panic(fmt.Sprintf("embedded flow is invalid: %v", err))
		}
	})
	return defaultDef
}

// LoadOrDefault loads path, or returns the embedded flow when path is empty.
func LoadOrDefault(path string) (Definition, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func parseJSON(data []byte) (Document, error) {
	var doc Document
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Document{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return Document{}, fmt.Errorf("parse json: %w", err)
	}
	return doc, nil
}

func parseYAML(data []byte) (Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Document{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return Document{}, fmt.Errorf("parse yaml: %w", err)
	}
	return doc, nil
}
