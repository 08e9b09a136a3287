// Package io reads resolved dependency graphs from JSON, YAML and TOML files
// and writes them back as JSON.
//
// # Format
//
// A graph file has optional "settings" and "conf" tables and a required
// "nodes" array, listed in the resolver's traversal order:
//
//	{
//	  "settings": {"os": "Linux", "arch": "x86_64", "build_type": "Release"},
//	  "conf": {"tools.build:cxxflags": ["-fPIC"]},
//	  "nodes": [
//	    {
//	      "name": "spdlog", "version": "1.14.1",
//	      "direct": true, "transitive": true,
//	      "package_folder": "/home/u/.conan2/p/spdlo1234/p",
//	      "cpp_info": {"includedirs": ["include"], "libs": ["spdlog"]},
//	      "requires": ["fmt"]
//	    },
//	    {
//	      "name": "flatbuffers", "version": "24.3.25", "build": true,
//	      "cpp_info": {"bindirs": ["/opt/flatc/bin"]},
//	      "buildenv": [{"name": "WAF_TOOLS", "op": "define", "value": "/opt/flatc/waf/flatc.py"}]
//	    }
//	  ]
//	}
//
// # Node Fields
//
// Required:
//   - name, version
//   - cpp_info, unless the node lists components
//
// Optional:
//   - build: the node is a tool requirement
//   - direct, transitive: requirement traits
//   - package_folder: base for relative directories
//   - components: [{"name": "ssl", "libs": [...], "requires": ["crypto"]}]
//   - requires: package names this node depends on
//   - buildenv, runenv: [{"name", "op", "value", "separator"}]
//
// Operation kinds accept the package manager's spellings (set,
// define_path, prepend_path, append_path) and are normalized on import.
// Unknown kinds are kept so that validation can report them.
//
// YAML and TOML files use the same field names.
//
// # Import and Export
//
// [ImportGraph] picks the decoder from the file extension; [ReadGraph] takes
// an explicit [Format]. [ExportJSON] and [WriteJSON] write the canonical JSON
// form, which [ReadGraph] reads back to an equal graph.
package io
