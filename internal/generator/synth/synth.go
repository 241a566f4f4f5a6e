package synth

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/sumforge/uniongen/internal/generator"
)

// DefaultTagUnderlying is the tag storage type when no configuration
// overrides it. Unions are small and low-cardinality; a byte always
// covers them.
const DefaultTagUnderlying = "uint8"

// AllowedTagUnderlyings lists the integer types the tag enumeration may
// be based on.
var AllowedTagUnderlyings = []string{"uint8", "uint16", "uint32", "int"}

type representationSynthesizer struct {
	tagUnderlying string
}

// New creates a generator.RepresentationSynthesizer with the default
// tag storage type.
func New() generator.RepresentationSynthesizer {
	return &representationSynthesizer{tagUnderlying: DefaultTagUnderlying}
}

// NewWithTagUnderlying creates a synthesizer using the given tag storage
// type. The type must be one of AllowedTagUnderlyings.
func NewWithTagUnderlying(underlying string) (generator.RepresentationSynthesizer, error) {
	ok := false
	for _, u := range AllowedTagUnderlyings {
		if u == underlying {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("unsupported tag underlying type %q (allowed: %s)",
			underlying, strings.Join(AllowedTagUnderlyings, ", "))
	}
	return &representationSynthesizer{tagUnderlying: underlying}, nil
}

// Synthesize assigns each case its ordinal (declaration position,
// starting at 0), its tag constant, and its backing slots. One slot per
// payload value, never shared between cases: slots of inactive cases
// keep their zero value and are never read.
func (s *representationSynthesizer) Synthesize(schema *generator.UnionSchema) (*generator.UnionModel, error) {
	model := &generator.UnionModel{
		Schema:        schema,
		TagType:       generator.TagTypeName(schema.HostName),
		TagUnderlying: s.tagUnderlying,
	}

	for i := range schema.Cases {
		c := &schema.Cases[i]
		layout := generator.CaseLayout{
			Case:     c,
			TagConst: generator.TagConstName(schema.HostName, c.Name),
		}

		switch c.Kind {
		case generator.NoPayload:
			// No slots.
		case generator.SinglePayload:
			layout.Slots = []generator.SlotField{{
				Name:  generator.SlotName(c.Name),
				Param: "v",
				Type:  c.Fields[0].Type,
			}}
		case generator.TupleShapedPayload:
			for fi, f := range c.Fields {
				fieldName := f.Name
				if fieldName == "" {
					fieldName = fmt.Sprintf("F%d", fi)
				}
				layout.Slots = append(layout.Slots, generator.SlotField{
					Name:  generator.TupleSlotName(c.Name, fieldName),
					Param: paramIdent(generator.LowerCamel(fieldName)),
					Type:  f.Type,
				})
			}
		}

		model.Layouts = append(model.Layouts, layout)
	}

	return model, nil
}

// paramIdent keeps factory parameter names clear of Go keywords.
func paramIdent(name string) string {
	if token.IsKeyword(name) {
		return name + "_"
	}
	return name
}

var _ generator.RepresentationSynthesizer = (*representationSynthesizer)(nil)
