package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadColumnMapping reads a YAML column-mapping file. Absent keys fall back
// to the default statement layout.
func LoadColumnMapping(path string) (ColumnMapping, error) {
	mapping := DefaultColumnMapping()

	data, err := os.ReadFile(path)
	if err != nil {
		return mapping, fmt.Errorf("ingest: read mapping file: %w", err)
	}
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return mapping, fmt.Errorf("ingest: parse mapping file: %w", err)
	}

	if mapping.TxnID == "" || mapping.Date == "" || mapping.Amount == "" || mapping.Description == "" {
		return mapping, fmt.Errorf("ingest: mapping file %s leaves a column unnamed", path)
	}
	return mapping, nil
}
