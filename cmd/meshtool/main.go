// meshtool converts polyhedral boundary-representation models into encoded shape files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/polymesh/internal/config"
	"github.com/Faultbox/polymesh/internal/logger"
	"github.com/Faultbox/polymesh/pkg/brep"
	"github.com/Faultbox/polymesh/pkg/formats"
	"github.com/Faultbox/polymesh/pkg/meshing"
)

const shapeExt = ".shape"

var errUsage = errors.New("usage")

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(flag.Args(), cfg, logger.Log, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
		} else {
			logger.Log.Error("meshtool failed", zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}

func run(args []string, cfg *config.Config, log *zap.Logger, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "mesh":
		return cmdMesh(args, cfg, log, out)
	case "info":
		return cmdInfo(args, out)
	case "config":
		return cmdConfig(args, cfg, out)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		return errUsage
	}
}

func printUsage() {
	fmt.Println(`meshtool - polyhedral model tessellation utility

Usage:
  meshtool [flags] <command> [arguments]

Commands:
  mesh [-o output] <model.yaml>...   Triangulate models into shape files
  info <file.shape>                  Decode a shape file and print its contents
  config [path]                      Write the effective configuration

Flags:
  -config <path>          Config file (default ./config.yaml or the user config dir)
  -format text|binary     Output encoding
  -weld-tolerance <d>     Weld vertices closer than d
  -no-fast-path           Tessellate triangles and quads like any other face
  -debug                  Enable debug logging

Examples:
  meshtool mesh wall.yaml
  meshtool -format text mesh -o wall.shape wall.yaml
  meshtool info wall.shape`)
}

func cmdMesh(args []string, cfg *config.Config, log *zap.Logger, out io.Writer) error {
	fs := flag.NewFlagSet("mesh", flag.ContinueOnError)
	output := fs.String("o", "", "Output file (single model) or directory")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 1 {
		return errUsage
	}

	format, err := cfg.GeometryType()
	if err != nil {
		return err
	}
	mesher, err := meshing.New(format, append(cfg.MesherOptions(), meshing.WithLogger(log))...)
	if err != nil {
		return err
	}

	failed := 0
	for _, path := range fs.Args() {
		dst := outputPath(path, *output, fs.NArg() > 1)
		if err := meshFile(mesher, path, dst, out); err != nil {
			log.Error("mesh failed", zap.String("model", path), zap.Error(err))
			failed++
			continue
		}
		log.Info("wrote shape", zap.String("model", path), zap.String("output", dst))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d models failed", failed, fs.NArg())
	}
	return nil
}

// outputPath places the shape next to the model unless an output is given.
// With several models the output names a directory.
func outputPath(model, output string, many bool) string {
	name := strings.TrimSuffix(filepath.Base(model), filepath.Ext(model)) + shapeExt
	switch {
	case output == "":
		return filepath.Join(filepath.Dir(model), name)
	case many:
		return filepath.Join(output, name)
	default:
		return output
	}
}

func meshFile(mesher *meshing.Mesher, src, dst string, out io.Writer) error {
	item, err := brep.Load(src)
	if err != nil {
		return err
	}

	sg, err := mesher.Mesh(item)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := sg.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s -> %s (%s, %d bytes)\n", src, dst, sg.Format, len(sg.ShapeData))
	return nil
}

func cmdInfo(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	sg, err := formats.ReadShapeGeometry(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	p, err := sg.Decode()
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	b := sg.BoundingBox
	fmt.Fprintf(out, "Shape:     %s\n", args[0])
	fmt.Fprintf(out, "Format:    %s (version %d)\n", sg.Format, p.Version)
	fmt.Fprintf(out, "Data:      %d bytes\n", len(sg.ShapeData))
	fmt.Fprintf(out, "Vertices:  %d\n", len(p.Vertices))
	fmt.Fprintf(out, "Faces:     %d\n", len(p.Faces))
	fmt.Fprintf(out, "Triangles: %d\n", p.TriangleCount())
	if p.IndexWidth > 0 {
		fmt.Fprintf(out, "Indices:   %d bytes\n", p.IndexWidth)
	}
	fmt.Fprintf(out, "Bounds:    (%g, %g, %g) - (%g, %g, %g)\n", b[0], b[1], b[2], b[3], b[4], b[5])
	return nil
}

func cmdConfig(args []string, cfg *config.Config, out io.Writer) error {
	if len(args) < 1 {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}
	if err := cfg.SaveTo(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", args[0])
	return nil
}
