package build_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumforge/uniongen/generr"
	"github.com/sumforge/uniongen/internal/build"
)

const shapeSchema = `package shapes

//union:generate
type ShapeUnion struct {
	Circle    float64
	Rectangle struct {
		Width  float64
		Height float64
	}
	Empty struct{}
}
`

func writeSchema(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0644))
}

func generate(t *testing.T, dir string, opts build.Options) (*build.Result, error) {
	t.Helper()
	builder, err := build.NewBuilder(dir, opts)
	require.NoError(t, err)
	return builder.Generate(context.Background())
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "shapes.go", shapeSchema)

	result, err := generate(t, dir, build.Options{})
	require.NoError(t, err)
	require.Len(t, result.Generated, 1)
	assert.Empty(t, result.Skipped)

	outputPath := filepath.Join(dir, "shape_union.go")
	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "// Code generated by uniongen. DO NOT EDIT.")
	assert.Contains(t, out, "package shapes")
	assert.Contains(t, out, "type Shape struct {")
	assert.Contains(t, out, "func ShapeRectangle(width float64, height float64) Shape {")
	assert.Contains(t, out, "func MatchShape[R any](")
}

func TestGenerateSkipCache(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "shapes.go", shapeSchema)

	result, err := generate(t, dir, build.Options{})
	require.NoError(t, err)
	require.Len(t, result.Generated, 1)

	// Unchanged source: the second run is a no-op.
	result, err = generate(t, dir, build.Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Generated)
	assert.Equal(t, []string{"Shape"}, result.Skipped)

	// Force overrides the cache.
	result, err = generate(t, dir, build.Options{Force: true})
	require.NoError(t, err)
	assert.Len(t, result.Generated, 1)

	// A source edit invalidates the cache.
	writeSchema(t, dir, "shapes.go", shapeSchema+"\ntype Extra struct{}\n")
	result, err = generate(t, dir, build.Options{})
	require.NoError(t, err)
	assert.Len(t, result.Generated, 1)
}

func TestGenerateDryRun(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "shapes.go", shapeSchema)

	var out bytes.Buffer
	result, err := generate(t, dir, build.Options{DryRun: true, Stdout: &out})
	require.NoError(t, err)
	require.Len(t, result.Generated, 1)

	assert.Contains(t, out.String(), "type Shape struct {")
	_, err = os.Stat(filepath.Join(dir, "shape_union.go"))
	assert.True(t, os.IsNotExist(err), "dry run must not write files")
}

func TestGenerateTypeFilter(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "shapes.go", shapeSchema)
	writeSchema(t, dir, "events.go", `package shapes

//union:generate
type EventUnion struct {
	Started struct{}
}
`)

	result, err := generate(t, dir, build.Options{Types: []string{"Event"}})
	require.NoError(t, err)
	require.Len(t, result.Generated, 1)
	assert.Equal(t, filepath.Join(dir, "event_union.go"), result.Generated[0])

	_, err = os.Stat(filepath.Join(dir, "shape_union.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "shapes.go", `package shapes

//union:generate
type ShapeUnion struct {
	Circle float64
}

type Shape struct{}
`)

	result, err := generate(t, dir, build.Options{})
	require.Error(t, err)
	assert.Empty(t, result.Generated)

	multi, ok := err.(*generr.MultiError)
	require.True(t, ok, "expected *generr.MultiError, got %T", err)
	assert.Equal(t, generr.CodeNotAugmentable, multi.Errors[0].(generr.Diagnostic).Code())
}

func TestGenerateFailingTypeNeverBlocksSiblings(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "shapes.go", shapeSchema)
	writeSchema(t, dir, "broken.go", `package shapes

//union:generate
type BrokenUnion struct{}
`)

	result, err := generate(t, dir, build.Options{})
	require.Error(t, err)

	// The healthy type still generated.
	assert.Equal(t, []string{filepath.Join(dir, "shape_union.go")}, result.Generated)

	// Its cache entry survived the sibling failure: the next run skips
	// it instead of regenerating.
	result, err = generate(t, dir, build.Options{})
	require.Error(t, err)
	assert.Empty(t, result.Generated)
	assert.Equal(t, []string{"Shape"}, result.Skipped)
}

func TestGenerateOutputFileNameCollision(t *testing.T) {
	dir := t.TempDir()
	// AB and Ab both snake-case to ab_union.go; only the first may own
	// the path.
	writeSchema(t, dir, "a.go", `package shapes

//union:generate
type ABUnion struct {
	Value int
}
`)
	writeSchema(t, dir, "b.go", `package shapes

//union:generate
type AbUnion struct {
	Other string
}
`)

	result, err := generate(t, dir, build.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ab_union.go")
	assert.Contains(t, err.Error(), "[UG005]")

	require.Len(t, result.Generated, 1)
	data, err := os.ReadFile(filepath.Join(dir, "ab_union.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "type AB struct {")
}

func TestGenerateRejectsCollidingDerivedIdentifiers(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "items.go", `package items

//union:generate
type ItemUnion struct {
	AB int
	Ab string
}
`)

	result, err := generate(t, dir, build.Options{})
	require.Error(t, err)
	assert.Empty(t, result.Generated, "a failing type produces no generated file")
	assert.Contains(t, err.Error(), "[UG005]")

	_, err = os.Stat(filepath.Join(dir, "item_union.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateRefusesForeignOverwrite(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "shapes.go", shapeSchema)
	// A hand-written file already owns the output name.
	writeSchema(t, dir, "shape_union.go", "package shapes\n\nvar handwritten = true\n")

	_, err := generate(t, dir, build.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")
}

func TestGenerateHonorsConfig(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "shapes.go", shapeSchema)
	require.NoError(t, os.WriteFile(filepath.Join(dir, build.ConfigFileName),
		[]byte(`{"outputSuffix": "_sum.go", "tagUnderlying": "uint16"}`), 0644))

	result, err := generate(t, dir, build.Options{})
	require.NoError(t, err)
	require.Len(t, result.Generated, 1)

	data, err := os.ReadFile(filepath.Join(dir, "shape_sum.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "type ShapeTag uint16")
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "shapes.go", shapeSchema)

	_, err := generate(t, dir, build.Options{})
	require.NoError(t, err)

	result, err := build.Clean(dir)
	require.NoError(t, err)
	// Generated file plus the skip cache.
	assert.Len(t, result.Removed, 2)

	_, err = os.Stat(filepath.Join(dir, "shape_union.go"))
	assert.True(t, os.IsNotExist(err))

	// The schema itself is untouched.
	_, err = os.Stat(filepath.Join(dir, "shapes.go"))
	assert.NoError(t, err)
}
