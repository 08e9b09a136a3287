// Package pkg provides the libraries behind wafconan, the bridge between a
// resolved Conan dependency graph and waf builds.
//
// # Overview
//
// A Conan install produces a graph of packages with their include paths,
// libraries, flags and environments. wafconan projects that graph into a
// waf ConfigSet artifact that a wscript can load, and activates the recorded
// build and run environments around waf commands.
//
// # Architecture
//
// The typical data flow:
//
//	graph.json / graph.yaml / graph.toml
//	         ↓
//	    [io] package (decode into a [depgraph] graph)
//	         ↓
//	    [project] package (usage bundles, use-lists, toolchain facts)
//	         ↓
//	    [configset] package (waf ConfigSet artifact on disk)
//	         ↓
//	    [loader] package (load artifact into a waf-style environment)
//	         ↓
//	    [activate] + [lifecycle] packages (environment around waf commands)
//
// [pipeline] wires the first half together with caching from [cache] and
// hooks from [observability].
//
// # Quick Start
//
//	g, _ := io.ImportGraph("build/graph.json")
//	p, _ := project.Project(g, project.Options{})
//	_ = p.ConfigSet().SaveFile("build/conan_waf_config.py")
//
//	env, _ := loader.Load("build/conan_waf_config.py", loader.Options{})
//	fmt.Println(env.Merged([]string{"fmt"})["LIB"])
//
// # Testing
//
//	go test ./pkg/...                    # All packages
//	go test ./pkg/project/...            # Specific package
//
// [io]: https://pkg.go.dev/github.com/matzehuels/wafconan/pkg/io
// [depgraph]: https://pkg.go.dev/github.com/matzehuels/wafconan/pkg/depgraph
// [project]: https://pkg.go.dev/github.com/matzehuels/wafconan/pkg/project
// [configset]: https://pkg.go.dev/github.com/matzehuels/wafconan/pkg/configset
// [loader]: https://pkg.go.dev/github.com/matzehuels/wafconan/pkg/loader
// [activate]: https://pkg.go.dev/github.com/matzehuels/wafconan/pkg/activate
// [lifecycle]: https://pkg.go.dev/github.com/matzehuels/wafconan/pkg/lifecycle
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/wafconan/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/wafconan/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/wafconan/pkg/observability
package pkg
