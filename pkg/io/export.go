package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/wafconan/pkg/depgraph"
)

// WriteJSON encodes g as indented JSON and writes it to w.
// The output can be re-imported with [ReadGraph] for round-trip processing.
func WriteJSON(g *depgraph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *depgraph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
