package synth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumforge/uniongen/internal/generator"
	"github.com/sumforge/uniongen/internal/generator/extract"
	"github.com/sumforge/uniongen/internal/generator/synth"
	"github.com/sumforge/uniongen/internal/parser"
)

func extractSchema(t *testing.T, src string) *generator.UnionSchema {
	t.Helper()
	p := parser.New()
	file, err := p.ParseFile("", src)
	require.NoError(t, err)
	schemas, err := extract.New().Extract(p.FileSet(), file)
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	return schemas[0]
}

func TestSynthesize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		validate func(t *testing.T, model *generator.UnionModel)
	}{
		{
			name: "tag layout follows declaration order",
			input: `package p

//union:generate
type ShapeUnion struct {
	Circle    float64
	Rectangle struct{ Width, Height float64 }
	Empty     struct{}
}`,
			validate: func(t *testing.T, model *generator.UnionModel) {
				assert.Equal(t, "ShapeTag", model.TagType)
				assert.Equal(t, "uint8", model.TagUnderlying)
				require.Len(t, model.Layouts, 3)

				assert.Equal(t, "ShapeTagCircle", model.Layouts[0].TagConst)
				assert.Equal(t, "ShapeTagRectangle", model.Layouts[1].TagConst)
				assert.Equal(t, "ShapeTagEmpty", model.Layouts[2].TagConst)
				assert.Equal(t, 0, model.Layouts[0].Case.Ordinal)
				assert.Equal(t, 2, model.Layouts[2].Case.Ordinal)
			},
		},
		{
			name: "single payload gets one slot named after the case",
			input: `package p

//union:generate
type ShapeUnion struct {
	Circle float64
}`,
			validate: func(t *testing.T, model *generator.UnionModel) {
				require.Len(t, model.Layouts[0].Slots, 1)
				slot := model.Layouts[0].Slots[0]
				assert.Equal(t, "circle", slot.Name)
				assert.Equal(t, "v", slot.Param)
			},
		},
		{
			name: "tuple payload gets one slot per field",
			input: `package p

//union:generate
type ShapeUnion struct {
	Rectangle struct{ Width, Height float64 }
}`,
			validate: func(t *testing.T, model *generator.UnionModel) {
				slots := model.Layouts[0].Slots
				require.Len(t, slots, 2)
				assert.Equal(t, "rectangleWidth", slots[0].Name)
				assert.Equal(t, "width", slots[0].Param)
				assert.Equal(t, "rectangleHeight", slots[1].Name)
				assert.Equal(t, "height", slots[1].Param)
			},
		},
		{
			name: "empty payload has no slots",
			input: `package p

//union:generate
type ShapeUnion struct {
	Empty struct{}
}`,
			validate: func(t *testing.T, model *generator.UnionModel) {
				assert.Empty(t, model.Layouts[0].Slots)
			},
		},
		{
			name: "slots are never shared between cases",
			input: `package p

//union:generate
type PairUnion struct {
	A struct{ X, Y int }
	B struct{ X, Y int }
}`,
			validate: func(t *testing.T, model *generator.UnionModel) {
				names := make(map[string]bool)
				for _, layout := range model.Layouts {
					for _, slot := range layout.Slots {
						assert.False(t, names[slot.Name], "slot %s reused", slot.Name)
						names[slot.Name] = true
					}
				}
				assert.Len(t, names, 4)
			},
		},
		{
			name: "unnamed tuple entries get positional names",
			input: `package p

//union:generate
type PairUnion struct {
	Both struct {
		int
		string
	}
}`,
			validate: func(t *testing.T, model *generator.UnionModel) {
				slots := model.Layouts[0].Slots
				require.Len(t, slots, 2)
				assert.Equal(t, "bothF0", slots[0].Name)
				assert.Equal(t, "f0", slots[0].Param)
				assert.Equal(t, "bothF1", slots[1].Name)
				assert.Equal(t, "f1", slots[1].Param)
			},
		},
		{
			name: "keyword-shaped names are kept out of the grammar",
			input: `package p

//union:generate
type TokenUnion struct {
	Map   int
	Entry struct{ Type string }
}`,
			validate: func(t *testing.T, model *generator.UnionModel) {
				// The Map case's slot would be the keyword "map".
				assert.Equal(t, "map_", model.Layouts[0].Slots[0].Name)
				// A field named Type yields the keyword parameter "type".
				assert.Equal(t, "type_", model.Layouts[1].Slots[0].Param)
			},
		},
		{
			name: "a case lowering to the tag field steps aside",
			input: `package p

//union:generate
type SelectorUnion struct {
	TAG string
}`,
			validate: func(t *testing.T, model *generator.UnionModel) {
				assert.Equal(t, "tag_", model.Layouts[0].Slots[0].Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := synth.New().Synthesize(extractSchema(t, tt.input))
			require.NoError(t, err)
			tt.validate(t, model)
		})
	}
}

func TestNewWithTagUnderlying(t *testing.T) {
	for _, underlying := range synth.AllowedTagUnderlyings {
		_, err := synth.NewWithTagUnderlying(underlying)
		assert.NoError(t, err)
	}

	_, err := synth.NewWithTagUnderlying("float64")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float64")
}

func TestSynthesizeTagUnderlying(t *testing.T) {
	s, err := synth.NewWithTagUnderlying("uint16")
	require.NoError(t, err)

	model, err := s.Synthesize(extractSchema(t, `package p

//union:generate
type ShapeUnion struct {
	Circle float64
}`))
	require.NoError(t, err)
	assert.Equal(t, "uint16", model.TagUnderlying)
}
