package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// JSONConnector loads a JSON array-of-objects file into a Dataset.
// There is no JSON library anywhere in the retrieval pack beyond the
// standard library (see DESIGN.md), so this connector is built
// directly on encoding/json.
type JSONConnector struct {
	path      string
	connected bool
}

// NewJSONConnector returns a connector for the file at path.
func NewJSONConnector(path string) *JSONConnector {
	return &JSONConnector{path: path}
}

func (c *JSONConnector) Connect(ctx context.Context) error {
	if _, err := os.Stat(c.path); err != nil {
		return fmt.Errorf("connector: json: %w", err)
	}
	c.connected = true
	return nil
}

func (c *JSONConnector) Close() error {
	c.connected = false
	return nil
}

func (c *JSONConnector) IsConnected() bool { return c.connected }

func (c *JSONConnector) Load(ctx context.Context) (*LoadResult, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("connector: json: read: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("connector: json: decode: %w (expected a top-level array of objects)", err)
	}

	columnOrder := unionKeysInOrder(records)

	return &LoadResult{
		TableName:   tableNameFromPath(c.path),
		ColumnOrder: columnOrder,
		Rows:        records,
	}, nil
}

// unionKeysInOrder derives a stable column order: every key from every
// record, in first-seen order, de-duplicated. A plain map decode loses
// per-object key order, so this is the closest approximation available
// without a streaming decoder.
func unionKeysInOrder(records []map[string]any) []string {
	seen := make(map[string]bool)
	var order []string
	for _, rec := range records {
		for k := range rec {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	return order
}
