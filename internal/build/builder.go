package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/sumforge/uniongen/generr"
	"github.com/sumforge/uniongen/internal/generator"
	"github.com/sumforge/uniongen/internal/generator/analyze"
	"github.com/sumforge/uniongen/internal/generator/emit"
	"github.com/sumforge/uniongen/internal/generator/extract"
	"github.com/sumforge/uniongen/internal/generator/synth"
	"github.com/sumforge/uniongen/internal/parser"
)

// Options control one generation run.
type Options struct {
	// Verbose prints per-type progress.
	Verbose bool
	// Force regenerates even when the skip cache is up to date.
	Force bool
	// DryRun prints generated output to Stdout instead of writing files.
	DryRun bool
	// Types restricts generation to the named host types.
	Types []string
	// Stdout receives dry-run output and progress; defaults to os.Stdout.
	Stdout io.Writer
}

// Result summarizes one generation run.
type Result struct {
	// Generated lists the paths written (or, on dry runs, that would be
	// written).
	Generated []string
	// Skipped lists host types left alone because the cache was fresh.
	Skipped []string
}

// Builder orchestrates generation for one package directory.
type Builder struct {
	dir    string
	config *Config
	opts   Options
}

// NewBuilder creates a builder for the given package directory, loading
// its optional uniongen.json.
func NewBuilder(dir string, opts Options) (*Builder, error) {
	config, err := LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &Builder{dir: dir, config: config, opts: opts}, nil
}

// job is one independent unit of work: a schema plus the source
// snapshot it came from.
type job struct {
	schema *generator.UnionSchema
	source []byte
}

// Generate runs the whole pass: discover schemas, validate and emit
// each independently (in parallel; they share only the immutable
// snapshot), and write the results. Analysis diagnostics are collected
// across all types and reported together; a failing type produces no
// output, but never blocks its siblings.
func (b *Builder) Generate(ctx context.Context) (*Result, error) {
	p := parser.New()

	index := generator.NewPackageIndex()
	extractor := extract.New()

	synthesizer, err := synth.NewWithTagUnderlying(b.config.TagUnderlying)
	if err != nil {
		return nil, err
	}
	pipeline := generator.NewPipeline(analyze.New(p.FileSet()), synthesizer, emit.New())

	multi := &generr.MultiError{}

	// Step 1: parse the package snapshot, excluding previously
	// generated files and tests.
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("reading package directory: %w", err)
	}

	var jobs []job
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if strings.HasSuffix(name, b.config.OutputSuffix) || strings.HasSuffix(name, "_test.go") {
			continue
		}

		path := filepath.Join(b.dir, name)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		file, err := p.ParseFile(path, src)
		if err != nil {
			multi.Append(err)
			continue
		}

		// Step 2: index declarations for collision checks.
		index.AddFile(file)

		// Step 3: extract marked schemas.
		schemas, err := extractor.Extract(p.FileSet(), file)
		multi.Append(err)
		for _, schema := range schemas {
			if !b.typeEnabled(schema.HostName) {
				continue
			}
			jobs = append(jobs, job{schema: schema, source: src})
		}
	}

	// Distinct host types can snake-case onto one output file name (AB
	// and Ab both want ab_union.go); the later one fails rather than
	// racing the first for the path.
	outputOwners := make(map[string]string)
	kept := jobs[:0]
	for _, j := range jobs {
		name := outputFileName(j.schema.HostName, b.config.OutputSuffix)
		if prev, ok := outputOwners[name]; ok {
			multi.Append(generr.NewNameConflictError(generr.CodeMemberConflict,
				generator.DiagPos(p.FileSet(), j.schema.Pos),
				fmt.Sprintf("%s: host types %s and %s both generate %s",
					j.schema.SchemaName, prev, j.schema.HostName, name)))
			continue
		}
		outputOwners[name] = j.schema.HostName
		kept = append(kept, j)
	}
	jobs = kept

	// Step 4: generate each type independently.
	skipCache := loadCache(b.dir)
	result := &Result{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			host := j.schema.HostName
			outputName := outputFileName(host, b.config.OutputSuffix)
			outputPath := filepath.Join(b.dir, outputName)
			hash := schemaHash(j.source, b.config)

			if b.config.CacheEnabled() && !b.opts.Force && !b.opts.DryRun &&
				skipCache.upToDate(host, hash, outputPath) {
				mu.Lock()
				result.Skipped = append(result.Skipped, host)
				mu.Unlock()
				if b.opts.Verbose {
					fmt.Fprintf(b.opts.Stdout, "%s: up to date\n", host)
				}
				return nil
			}

			text, err := pipeline.Run(j.schema, index)
			if err != nil {
				mu.Lock()
				multi.Append(err)
				mu.Unlock()
				return nil
			}

			formatted, err := imports.Process(outputPath, []byte(text), nil)
			if err != nil {
				return fmt.Errorf("formatting output for %s: %w", host, err)
			}

			if b.opts.DryRun {
				mu.Lock()
				fmt.Fprintf(b.opts.Stdout, "// %s\n%s", outputName, formatted)
				result.Generated = append(result.Generated, outputPath)
				mu.Unlock()
				return nil
			}

			if err := checkOverwrite(outputPath); err != nil {
				return err
			}
			if err := writeFileAtomic(outputPath, formatted); err != nil {
				return fmt.Errorf("writing %s: %w", outputName, err)
			}

			mu.Lock()
			result.Generated = append(result.Generated, outputPath)
			skipCache.record(host, hash, outputName)
			mu.Unlock()

			if b.opts.Verbose {
				fmt.Fprintf(b.opts.Stdout, "%s: generated %s\n", host, outputName)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	// The cache is saved even when a sibling type failed: the types that
	// did generate stay skippable on the next run.
	if b.config.CacheEnabled() && !b.opts.DryRun && len(result.Generated) > 0 {
		if err := skipCache.save(b.dir); err != nil && b.opts.Verbose {
			fmt.Fprintf(b.opts.Stdout, "warning: saving cache: %v\n", err)
		}
	}

	if err := multi.ErrOrNil(); err != nil {
		return result, err
	}
	return result, nil
}

func (b *Builder) typeEnabled(host string) bool {
	if len(b.opts.Types) > 0 {
		found := false
		for _, t := range b.opts.Types {
			if t == host {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return b.config.TypeEnabled(host)
}

// checkOverwrite refuses to replace a file uniongen did not generate.
func checkOverwrite(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !strings.HasPrefix(string(data), emit.Header) {
		return fmt.Errorf("refusing to overwrite %s: not a generated file", path)
	}
	return nil
}

// writeFileAtomic writes via a temp file and rename so a cancelled or
// crashed run never leaves a half-written generated file behind.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".uniongen-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
