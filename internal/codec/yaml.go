package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports snapshot data from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*Snapshot, error) {
	var snapshot Snapshot
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &snapshot, nil
}

// Export exports snapshot data to YAML
func (c *YAMLCodec) Export(snapshot *Snapshot, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
