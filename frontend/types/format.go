package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/util"
)

// maxDebugDepth bounds debugString on recursive types
const maxDebugDepth = 4

// debugString displays types without access to declarations. Named types use
// the installed symbol namer, or their id.
func (s *Store) debugString(id TypeID, depth int) string {
	t := s.Get(id)
	if t == nil {
		return "<none>"
	}
	if depth > maxDebugDepth {
		return "..."
	}
	if t.alias != nil && s.carriesAlias(t) {
		return s.symbolName(t.alias.Symbol, id) + s.debugArgs(t.alias.Args, depth)
	}
	switch d := t.data.(type) {
	case *Intrinsic:
		return d.Name
	case *Literal:
		switch v := d.Value.(type) {
		case string:
			return strconv.Quote(v)
		case float64:
			return ast.FormatNumber(v)
		case bool:
			return strconv.FormatBool(v)
		}
	case *UnionOrIntersection:
		if t.flags&FlagBoolean != 0 {
			return "boolean"
		}
		sep := " | "
		if t.flags&FlagIntersection != 0 {
			sep = " & "
		}
		parts := make([]string, len(d.Types))
		for i, m := range d.Types {
			parts[i] = s.debugString(m, depth+1)
			if s.Is(m, FlagUnionOrIntersection) && s.Flags(m)&FlagBoolean == 0 {
				parts[i] = "(" + parts[i] + ")"
			}
		}
		return strings.Join(parts, sep)
	case *TypeParameter:
		if d.Name == "" {
			return fmt.Sprintf("T#%d", id)
		}
		return d.Name
	case *TypeReference:
		if tuple := s.TupleTarget(id); tuple != nil {
			var sb strings.Builder
			if tuple.Readonly {
				sb.WriteString("readonly ")
			}
			sb.WriteByte('[')
			for i, e := range d.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				switch {
				case tuple.ElementFlags[i]&ElementRest != 0:
					sb.WriteString("..." + s.debugString(e, depth+1) + "[]")
				case tuple.ElementFlags[i]&ElementOptional != 0:
					sb.WriteString(s.debugString(e, depth+1) + "?")
				default:
					sb.WriteString(s.debugString(e, depth+1))
				}
			}
			sb.WriteByte(']')
			return sb.String()
		}
		if s.IsArray(id) {
			elem := s.debugString(d.Args[0], depth+1)
			if s.Is(d.Args[0], FlagUnionOrIntersection) {
				elem = "(" + elem + ")"
			}
			return elem + "[]"
		}
		return s.symbolName(t.symbol, d.Target) + s.debugArgs(d.Args, depth)
	case *InterfaceType:
		return s.symbolName(t.symbol, id)
	case *IndexType:
		return "keyof " + s.debugString(d.Target, depth+1)
	case *IndexedAccessType:
		return s.debugString(d.Object, depth+1) + "[" + s.debugString(d.Index, depth+1) + "]"
	case *ConditionalType:
		return fmt.Sprintf("%s extends %s ? %s : %s",
			s.debugString(d.CheckType, depth+1), s.debugString(d.ExtendsType, depth+1),
			s.debugString(s.conditionalTrueType(d), depth+1), s.debugString(s.conditionalFalseType(d), depth+1))
	case *TemplateLiteralType:
		var sb strings.Builder
		sb.WriteByte('`')
		for i, text := range d.Texts {
			sb.WriteString(text)
			if i < len(d.Types) {
				sb.WriteString("${" + s.debugString(d.Types[i], depth+1) + "}")
			}
		}
		sb.WriteByte('`')
		return sb.String()
	case *MappedType:
		if !s.IsGenericMapped(id) {
			break
		}
		param := s.debugString(d.TypeParameter, depth+1)
		return fmt.Sprintf("{ [%s in %s]: %s }", param,
			s.debugString(s.Instantiate(d.ConstraintType, d.Mapper), depth+1),
			s.debugString(s.Instantiate(d.TemplateType, d.Mapper), depth+1))
	}
	if t.flags&FlagObject != 0 {
		return s.debugMembers(s.ResolvedMembers(id), depth)
	}
	return t.String()
}

func (s *Store) debugArgs(args []TypeID, depth int) string {
	if len(args) == 0 {
		return ""
	}
	parts := util.MapSlice(args, func(a TypeID) string { return s.debugString(a, depth+1) })
	return "<" + strings.Join(parts, ", ") + ">"
}

func (s *Store) symbolName(symbol binder.SymbolID, id TypeID) string {
	if s.namer != nil && symbol.IsPresent() {
		return s.namer(symbol)
	}
	return fmt.Sprintf("#%d", id)
}

func (s *Store) debugMembers(m *Members, depth int) string {
	if len(m.Properties) == 0 && len(m.ConstructSignatures) == 0 && m.StringIndex == nil && m.NumberIndex == nil {
		switch len(m.CallSignatures) {
		case 0:
			return "{}"
		case 1:
			return s.debugSignature(m.CallSignatures[0], " => ", depth)
		}
	}
	var parts []string
	for _, p := range m.Properties {
		var sb strings.Builder
		if p.Flags.IsReadonly() {
			sb.WriteString("readonly ")
		}
		sb.WriteString(ast.UnescapeName(p.Name))
		if p.IsOptional() {
			sb.WriteByte('?')
		}
		sb.WriteString(": ")
		sb.WriteString(s.debugString(s.PropertyType(p), depth+1))
		parts = append(parts, sb.String())
	}
	for _, sig := range m.CallSignatures {
		parts = append(parts, s.debugSignature(sig, ": ", depth))
	}
	for _, sig := range m.ConstructSignatures {
		parts = append(parts, "new "+s.debugSignature(sig, ": ", depth))
	}
	for _, info := range []*IndexInfo{m.StringIndex, m.NumberIndex} {
		if info != nil {
			parts = append(parts, fmt.Sprintf("[key: %s]: %s", s.debugString(info.KeyType, depth+1), s.debugString(info.Type, depth+1)))
		}
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func (s *Store) debugSignature(sig *Signature, arrow string, depth int) string {
	var sb strings.Builder
	if len(sig.TypeParameters) > 0 {
		sb.WriteString(s.debugArgs(sig.TypeParameters, depth))
	}
	sb.WriteByte('(')
	for i, p := range sig.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if sig.HasRest() && i == len(sig.Params)-1 {
			sb.WriteString("...")
		}
		sb.WriteString(p.Name)
		if i >= sig.MinArgs && !(sig.HasRest() && i == len(sig.Params)-1) {
			sb.WriteByte('?')
		}
		sb.WriteString(": ")
		sb.WriteString(s.debugString(p.Type, depth+1))
	}
	sb.WriteByte(')')
	sb.WriteString(arrow)
	if sig.Predicate != nil && sig.Predicate.Type.IsPresent() {
		sb.WriteString(sig.Predicate.ParameterName + " is " + s.debugString(sig.Predicate.Type, depth+1))
	} else {
		sb.WriteString(s.debugString(s.ReturnType(sig), depth+1))
	}
	return sb.String()
}
