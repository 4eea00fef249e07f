// meshtool is a CLI utility for inspecting Wavefront OBJ meshes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Faultbox/spin/internal/engine/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "bounds":
		err = cmdBounds(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - Wavefront OBJ mesh utility

Usage:
  meshtool <command> [options]

Commands:
  info [-sort] <file.obj>...   Show vertex and triangle counts
  bounds <file.obj>            Show the axis-aligned bounding box

Examples:
  meshtool info assets/*.obj
  meshtool bounds assets/cube.obj`)
}

func load(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mesh.ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = filepath.Base(path)
	}
	return m, nil
}

func cmdInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	byCount := fs.Bool("sort", false, "Sort by vertex count, largest first")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: meshtool info <file.obj>...")
	}

	type row struct {
		path string
		m    *mesh.Mesh
	}
	var rows []row
	for _, path := range fs.Args() {
		m, err := load(path)
		if err != nil {
			return err
		}
		rows = append(rows, row{path, m})
	}
	if *byCount {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].m.VertexCount() > rows[j].m.VertexCount()
		})
	}

	fmt.Printf("%-32s %-16s %10s %10s %16s\n", "File", "Name", "Vertices", "Triangles", "Fingerprint")
	for _, r := range rows {
		fmt.Printf("%-32s %-16s %10d %10d %016x\n",
			r.path, r.m.Name, r.m.VertexCount(), r.m.TriangleCount(), r.m.Fingerprint())
	}
	return nil
}

func cmdBounds(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: meshtool bounds <file.obj>")
	}
	m, err := load(args[0])
	if err != nil {
		return err
	}
	lo, hi := m.Bounds()
	size := hi.Sub(lo)
	fmt.Printf("Mesh: %s\n", m.Name)
	fmt.Printf("Min:  (%.3f, %.3f, %.3f)\n", lo.X, lo.Y, lo.Z)
	fmt.Printf("Max:  (%.3f, %.3f, %.3f)\n", hi.X, hi.Y, hi.Z)
	fmt.Printf("Size: (%.3f, %.3f, %.3f)\n", size.X, size.Y, size.Z)
	return nil
}
