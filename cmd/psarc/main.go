package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/psarc-go/psarc"
)

const usage = `psarc - PSARC archive CLI tool

Usage:
  psarc pack <inputDir> <outputArchive>      Pack a directory into a PSARC archive
  psarc unpack <inputArchive> <outputDir>    Unpack a PSARC archive into a directory
  psarc help                                 Show this help message
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(-1)
	}

	var err error
	switch os.Args[1] {
	case "pack":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Error: missing input directory or output archive")
			os.Exit(-1)
		}
		err = pack(os.Args[2], os.Args[3])
	case "unpack":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Error: missing input archive or output directory")
			os.Exit(-1)
		}
		err = unpack(os.Args[2], os.Args[3])
	case "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", os.Args[1])
		fmt.Println(usage)
		os.Exit(-1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(-1)
	}
}

// pack walks inputDir and downsyncs every regular file it finds into a
// fresh PSARC archive written to outputArchive.
func pack(inputDir, outputArchive string) error {
	archive := psarc.NewArchive()

	err := filepath.WalkDir(inputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(inputDir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return archive.AddFile(psarc.NewFile(filepath.ToSlash(rel), data))
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", inputDir, err)
	}

	out, err := psarc.CreateFileHandle(outputArchive)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputArchive, err)
	}
	defer out.Close()

	return psarc.Downsync(out, archive, psarc.NewSettings(), nil)
}

// unpack upsyncs inputArchive and writes every non-manifest file it
// contains under outputDir.
func unpack(inputArchive, outputDir string) error {
	in, err := psarc.OpenFileHandle(inputArchive)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputArchive, err)
	}
	defer in.Close()

	archive := psarc.NewArchive()
	if err := psarc.Upsync(in, archive); err != nil {
		return fmt.Errorf("parsing %s: %w", inputArchive, err)
	}

	manifest := archive.Manifest()
	for _, f := range archive.Iterate() {
		if f == manifest {
			continue
		}
		data, err := f.Bytes()
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.Path(), err)
		}
		rel := filepath.FromSlash(strings.TrimPrefix(f.Path(), "/"))
		dest := filepath.Join(outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return err
		}
	}
	return nil
}
