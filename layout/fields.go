package layout

import (
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/spirv-bindless/errors"
)

// ParseFields builds a WIT record from a compact field list such as
// "a:u32, b:s32, c:u16". Field types use WIT type syntax.
func ParseFields(list string) (*wit.TypeDef, error) {
	parts := splitTopLevel(list)
	if len(parts) == 0 {
		return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("empty field list").
			Build()
	}

	record := &wit.Record{}
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		name, typ, ok := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		typ = strings.TrimSpace(typ)
		if !ok || name == "" || typ == "" {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Value(part).
				Detail("field %q is not of the form name:type", part).
				Build()
		}
		if seen[name] {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path(name).
				Detail("duplicate field %q", name).
				Build()
		}
		seen[name] = true

		witType, err := wit.ParseType(typ)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Path(name).
				Cause(err).
				Detail("cannot parse type %q", typ).
				Build()
		}
		record.Fields = append(record.Fields, wit.Field{Name: name, Type: witType})
	}

	return &wit.TypeDef{Kind: record}, nil
}

// splitTopLevel splits on commas that are not nested inside <...>.
func splitTopLevel(s string) []string {
	var (
		result  []string
		current strings.Builder
		depth   int
	)

	for _, ch := range s {
		switch ch {
		case '<':
			depth++
			current.WriteRune(ch)
		case '>':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
				continue
			}
			current.WriteRune(ch)
		default:
			current.WriteRune(ch)
		}
	}

	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}

	return result
}
