package io

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/wafconan/pkg/depgraph"
	"github.com/matzehuels/wafconan/pkg/envprofile"
	"github.com/matzehuels/wafconan/pkg/errors"
)

const sampleJSON = `{
  "settings": {"os": "Linux", "arch": "x86_64", "compiler.version": 13},
  "conf": {"tools.build:cxxflags": ["-fPIC"]},
  "nodes": [
    {
      "name": "spdlog", "version": "1.14.1", "direct": true, "transitive": true,
      "package_folder": "/p/spdlog",
      "cpp_info": {"includedirs": ["include"], "libs": ["spdlog"], "defines": ["SPDLOG_FMT_EXTERNAL"]},
      "requires": ["fmt"]
    },
    {
      "name": "openssl", "version": "3.2.0", "transitive": true,
      "components": [
        {"name": "crypto", "libs": ["crypto"]},
        {"name": "ssl", "libs": ["ssl"], "requires": ["crypto"]}
      ]
    },
    {
      "name": "flatbuffers", "version": "24.3.25", "build": true,
      "cpp_info": {"bindirs": ["/opt/flatc/bin"]},
      "buildenv": [{"name": "PATH", "op": "prepend_path", "value": "/opt/flatc/bin"}]
    }
  ]
}`

const sampleYAML = `
settings:
  os: Linux
nodes:
  - name: zlib
    version: "1.3.1"
    transitive: true
    cpp_info:
      libs: [z]
      includedirs: [include]
  - name: openssl
    version: "3.2.0"
    components:
      - name: ssl
        libs: [ssl]
        requires: [crypto]
      - name: crypto
        libs: [crypto]
`

const sampleTOML = `
[settings]
os = "Macos"

[[nodes]]
name = "zlib"
version = "1.3.1"
transitive = true

[nodes.cpp_info]
libs = ["z"]

[[nodes]]
name = "openssl"
version = "3.2.0"

[[nodes.components]]
name = "crypto"
libs = ["crypto"]
`

func TestReadGraphJSON(t *testing.T) {
	g, err := ReadGraph(strings.NewReader(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Fatalf("NodeCount = %d, want 3", g.NodeCount())
	}
	spdlog, ok := g.Lookup("spdlog", false)
	if !ok || !spdlog.Transitive || !spdlog.Direct || spdlog.PackageFolder != "/p/spdlog" {
		t.Errorf("spdlog = %+v", spdlog)
	}
	if got := spdlog.Info.Libs; len(got) != 1 || got[0] != "spdlog" {
		t.Errorf("spdlog libs = %v", got)
	}
	ssl, ok := g.Lookup("openssl", false)
	if !ok || len(ssl.Components) != 2 || ssl.Components[1].Name != "ssl" || ssl.Components[1].Info.Requires[0] != "crypto" {
		t.Errorf("openssl components = %+v", ssl.Components)
	}
	flatc, ok := g.Lookup("flatbuffers", true)
	if !ok || flatc.BuildEnv[0].Kind != envprofile.Prepend {
		t.Errorf("flatbuffers buildenv = %+v", flatc)
	}
	if got := g.Settings()["compiler.version"]; got != "13" {
		t.Errorf("compiler.version = %q, want 13", got)
	}
	if got := g.ConfList("tools.build:cxxflags"); len(got) != 1 || got[0] != "-fPIC" {
		t.Errorf("conf cxxflags = %v", got)
	}
}

func TestReadGraphYAML(t *testing.T) {
	g, err := ReadGraph(strings.NewReader(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	z, ok := g.Lookup("zlib", false)
	if !ok || z.Version != "1.3.1" || z.Info.Libs[0] != "z" {
		t.Errorf("zlib = %+v", z)
	}
	o, _ := g.Lookup("openssl", false)
	if len(o.Components) != 2 || o.Components[0].Info.Libs[0] != "ssl" {
		t.Errorf("openssl components = %+v", o.Components)
	}
	if g.Settings()["os"] != "Linux" {
		t.Errorf("settings = %v", g.Settings())
	}
}

func TestReadGraphTOML(t *testing.T) {
	g, err := ReadGraph(strings.NewReader(sampleTOML), FormatTOML)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	z, ok := g.Lookup("zlib", false)
	if !ok || !z.Transitive || z.Info.Libs[0] != "z" {
		t.Errorf("zlib = %+v", z)
	}
	o, _ := g.Lookup("openssl", false)
	if len(o.Components) != 1 || o.Components[0].Name != "crypto" || o.Components[0].Info.Libs[0] != "crypto" {
		t.Errorf("openssl components = %+v", o.Components)
	}
	if g.Settings()["os"] != "Macos" {
		t.Errorf("settings = %v", g.Settings())
	}
}

func TestReadGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errors.Code
	}{
		{"malformed json", `{"nodes": [`, errors.ErrCodeInvalidGraph},
		{"missing cpp_info", `{"nodes": [{"name": "boost", "version": "1.85.0"}]}`, errors.ErrCodeMalformedNode},
		{"duplicate node", `{"nodes": [{"name": "a", "version": "1", "cpp_info": {}}, {"name": "a", "version": "2", "cpp_info": {}}]}`, errors.ErrCodeInvalidGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGraph(strings.NewReader(tt.in), FormatJSON)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
		})
	}

	_, err := ReadGraph(strings.NewReader(`{"nodes": [{"name": "boost", "version": "1.85.0"}]}`), FormatJSON)
	if !stderrors.Is(err, depgraph.ErrMissingBuildInfo) || !strings.Contains(err.Error(), "boost/1.85.0") {
		t.Errorf("missing cpp_info error %v does not name the node", err)
	}
}

func TestRoundTrip(t *testing.T) {
	g, err := ReadGraph(strings.NewReader(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	var first bytes.Buffer
	if err := WriteJSON(g, &first); err != nil {
		t.Fatal(err)
	}
	g2, err := ReadGraph(bytes.NewReader(first.Bytes()), FormatJSON)
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	var second bytes.Buffer
	if err := WriteJSON(g2, &second); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("round trip differs:\n%s\n---\n%s", first.String(), second.String())
	}
}

func TestImportGraph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.yml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := ImportGraph(path)
	if err != nil {
		t.Fatalf("ImportGraph: %v", err)
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount = %d", g.NodeCount())
	}

	out := filepath.Join(dir, "graph.json")
	if err := ExportJSON(g, out); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if _, err := ImportGraph(out); err != nil {
		t.Errorf("re-import: %v", err)
	}

	if _, err := ImportGraph(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a.json": FormatJSON, "a.yaml": FormatYAML, "a.YML": FormatYAML,
		"a.toml": FormatTOML, "graph": FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %s, want %s", path, got, want)
		}
	}
}
