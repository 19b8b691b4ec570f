package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/reasonbench/internal/tools"
)

// DefaultPSCSizes are the person partitions generated for the PSC dataset.
var DefaultPSCSizes = []int{1_000, 10_000, 100_000, 500_000, 1_000_000}

// Generator writes datasets under OutputDir, one tree per tool:
// <OutputDir>/<dataset>/<tool>/<partition>/<relation>.data
type Generator struct {
	OutputDir string
	Force     bool
	Tools     []tools.ToolID
	Logger    *slog.Logger
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

func (g *Generator) tools() []tools.ToolID {
	if len(g.Tools) > 0 {
		return g.Tools
	}
	return tools.AllToolIDs()
}

// relation is one output file of a partition.
type relation struct {
	name  string
	lines []string
}

// partition is the set of relations sharing one size label.
type partition struct {
	name      string
	relations []relation
}

// write lays out partitions for every tool, one goroutine per tool.
func (g *Generator) write(ctx context.Context, dataset string, partitions []partition) error {
	root := filepath.Join(g.OutputDir, dataset)
	if err := PrepareOutputDir(root, g.Force); err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, id := range g.tools() {
		id := id
		eg.Go(func() error {
			write := WriterFor(id)
			for _, p := range partitions {
				if err := ctx.Err(); err != nil {
					return err
				}
				dir := filepath.Join(root, string(id), p.name)
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
				for _, r := range p.relations {
					if err := write(filepath.Join(dir, r.name+".data"), "", r.lines, r.name); err != nil {
						return fmt.Errorf("%s/%s: %w", id, p.name, err)
					}
				}
				g.logger().Debug("partition written", "dataset", dataset, "tool", id, "partition", p.name)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	g.logger().Info("dataset generated", "dataset", dataset, "dir", root, "partitions", len(partitions))
	return nil
}

// Doctors converts a doctors source tree, one subdirectory per size label
// ("10k", "1m", ...) holding CSV files, into per-tool datasets named after
// inputDir.
func (g *Generator) Doctors(ctx context.Context, inputDir string) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputDir, err)
	}

	type labelled struct {
		dir  string
		size int
	}
	var subdirs []labelled
	var sizes []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		size, err := ParseSize(e.Name())
		if err != nil {
			return err
		}
		subdirs = append(subdirs, labelled{dir: filepath.Join(inputDir, e.Name()), size: size})
		sizes = append(sizes, size)
	}
	if len(subdirs) == 0 {
		return fmt.Errorf("no size partitions found in %s", inputDir)
	}
	sort.Slice(subdirs, func(i, j int) bool { return subdirs[i].size < subdirs[j].size })
	digits := Digits(sizes)

	partitions := make([]partition, 0, len(subdirs))
	for _, sd := range subdirs {
		files, err := os.ReadDir(sd.dir)
		if err != nil {
			return err
		}
		p := partition{name: NormalizedInteger(sd.size, digits)}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			lines, err := readLines(filepath.Join(sd.dir, f.Name()))
			if err != nil {
				return err
			}
			stem := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
			p.relations = append(p.relations, relation{name: stem, lines: lines})
		}
		partitions = append(partitions, p)
	}

	return g.write(ctx, filepath.Base(inputDir), partitions)
}

// PSCSources locates the DBpedia extracts the PSC dataset is built from.
type PSCSources struct {
	Persons    string // persons_1m.csv
	Control    string // dbpedia_company_control.csv
	KeyPersons string // dbpedia_companies_kp.csv
}

// DefaultPSCSources returns the file names expected inside sourceDir.
func DefaultPSCSources(sourceDir string) PSCSources {
	return PSCSources{
		Persons:    filepath.Join(sourceDir, "persons_1m.csv"),
		Control:    filepath.Join(sourceDir, "dbpedia_company_control.csv"),
		KeyPersons: filepath.Join(sourceDir, "dbpedia_companies_kp.csv"),
	}
}

// PSC builds the person/control/keyPerson dataset. Each partition holds the
// first size persons and the full control and key person relations.
func (g *Generator) PSC(ctx context.Context, src PSCSources, sizes []int) error {
	if len(sizes) == 0 {
		sizes = DefaultPSCSizes
	}

	personLines, err := readLines(src.Persons)
	if err != nil {
		return err
	}
	// header plus two type-annotation rows
	if len(personLines) < 3 {
		return fmt.Errorf("%s: expected a header and two annotation rows", src.Persons)
	}
	persons, err := NormalizePersons(personLines[3:])
	if err != nil {
		return fmt.Errorf("%s: %w", src.Persons, err)
	}

	controlLines, err := readLines(src.Control)
	if err != nil {
		return err
	}
	control, err := NormalizeURLColumns(controlLines, 2)
	if err != nil {
		return fmt.Errorf("%s: %w", src.Control, err)
	}

	kpLines, err := readLines(src.KeyPersons)
	if err != nil {
		return err
	}
	if len(kpLines) == 0 {
		return fmt.Errorf("%s: empty file", src.KeyPersons)
	}
	keyPersons, err := NormalizeURLColumns(kpLines[1:], 2)
	if err != nil {
		return fmt.Errorf("%s: %w", src.KeyPersons, err)
	}

	digits := Digits(sizes)
	partitions := make([]partition, 0, len(sizes))
	for _, size := range sizes {
		n := min(size, len(persons))
		partitions = append(partitions, partition{
			name: NormalizedInteger(size, digits),
			relations: []relation{
				{name: "person", lines: persons[:n]},
				{name: "control", lines: control},
				{name: "keyPerson", lines: keyPersons},
			},
		})
	}
	return g.write(ctx, "psc", partitions)
}
