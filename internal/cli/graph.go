package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	gio "github.com/matzehuels/wafconan/pkg/io"
	"github.com/matzehuels/wafconan/pkg/render/nodelink"
)

// Diagram output formats.
const (
	diagramDOT = "dot"
	diagramSVG = "svg"
	diagramPNG = "png"
)

type graphOpts struct {
	output    string
	format    string
	detailed  bool
	hideTools bool
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph [graph]",
		Short: "Draw a resolved graph as DOT, SVG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "dot, svg or png (default: from --output extension, else dot)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show versions and use names")
	cmd.Flags().BoolVar(&opts.hideTools, "hide-tools", false, "omit tool requirements")

	return cmd
}

func runGraph(input string, opts graphOpts) error {
	format := opts.format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.output)), ".")
		if format != diagramSVG && format != diagramPNG {
			format = diagramDOT
		}
	}

	g, err := gio.ImportGraph(input)
	if err != nil {
		return err
	}
	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed, HideTools: opts.hideTools})

	var data []byte
	switch format {
	case diagramDOT:
		data = []byte(dot)
	case diagramSVG:
		data, err = nodelink.RenderSVG(dot)
	case diagramPNG:
		data, err = nodelink.RenderPNG(dot)
	default:
		return fmt.Errorf("unknown diagram format %q (want dot, svg or png)", format)
	}
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	printFile(opts.output)
	return nil
}
