package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/wafconan/pkg/depgraph"
	"github.com/matzehuels/wafconan/pkg/errors"
)

// ReadGraph decodes a graph in the given format from r.
//
// ReadGraph returns an INVALID_GRAPH error when the document cannot be
// decoded or two nodes share a key, and a MALFORMED_NODE error naming the
// node when a node has neither cpp_info nor components. Deeper checks
// (versions, cycles, operation kinds) are left to [depgraph.Graph.Validate].
//
// ReadGraph does not close r.
func ReadGraph(r io.Reader, format Format) (*depgraph.Graph, error) {
	var data graphFile
	switch format {
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode json")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode yaml")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "decode toml")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "graph format %q", format)
	}

	for _, n := range data.Nodes {
		if n.CppInfo == nil && len(n.Components) == 0 {
			return nil, errors.Wrap(errors.ErrCodeMalformedNode, depgraph.ErrMissingBuildInfo, "node %s", ref(n))
		}
	}

	g, err := toGraph(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "build graph")
	}
	return g, nil
}

// ImportGraph reads the graph file at path, choosing the decoder from its
// extension (see [FormatFromPath]).
func ImportGraph(path string) (*depgraph.Graph, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "open %s", path)
	}
	defer f.Close()

	g, err := ReadGraph(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func ref(n nodeFile) string {
	if n.Version == "" {
		return n.Name
	}
	return n.Name + "/" + n.Version
}
