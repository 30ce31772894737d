package nodebuilder

import (
	"slices"
	"strconv"
	"unicode"

	"github.com/RoaringBitmap/roaring"
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/types"
)

var intrinsicKinds = map[string]ast.Kind{
	"any":       ast.KindAnyKeyword,
	"error":     ast.KindAnyKeyword,
	"unknown":   ast.KindUnknownKeyword,
	"never":     ast.KindNeverKeyword,
	"void":      ast.KindVoidKeyword,
	"undefined": ast.KindUndefinedKeyword,
	"null":      ast.KindNullKeyword,
	"string":    ast.KindStringKeyword,
	"number":    ast.KindNumberKeyword,
	"object":    ast.KindObjectKeyword,
}

// serializer holds the state of one serialization
type serializer struct {
	*Builder
	ctx Context

	// length approximates the printed length of the nodes created so far
	length    int
	depth     int
	truncated bool
	// visited holds the types being expanded structurally
	visited      *roaring.Bitmap
	inaccessible []string
}

func (b *Builder) newSerializer(ctx Context) *serializer {
	return &serializer{Builder: b, ctx: ctx, visited: roaring.New()}
}

var noRange = ast.Range{}

func (ser *serializer) printed(node ast.NodeID) string {
	return ast.Print(ser.out, node)
}

func (ser *serializer) grow(n int) { ser.length += n }

func (ser *serializer) overBudget() bool {
	if ser.depth > ser.maxDepth {
		return true
	}
	return ser.maxLength > 0 && !ser.ctx.Flags.Has(NoTruncation) && ser.length > ser.maxLength
}

func (ser *serializer) truncatedNode() ast.NodeID {
	ser.truncated = true
	ser.grow(3)
	return ser.factory.NewTruncatedType(noRange)
}

func (ser *serializer) keyword(kind ast.Kind) ast.NodeID {
	ser.grow(len(ast.TokenText(kind)))
	return ser.factory.NewKeyword(noRange, kind)
}

func (ser *serializer) identifier(text string) ast.NodeID {
	ser.grow(len(text))
	return ser.factory.NewIdentifier(noRange, text)
}

// entityName builds a possibly qualified name, A.B.C
func (ser *serializer) entityName(names []string) ast.NodeID {
	id := ser.identifier(names[0])
	for _, n := range names[1:] {
		ser.grow(1)
		id = ser.factory.New(ast.KindQualifiedName, noRange, ast.NoFlags, &ast.QualifiedName{Left: id, Right: ser.identifier(n)})
	}
	return id
}

func (ser *serializer) typeToNode(t types.TypeID) ast.NodeID {
	if ser.overBudget() {
		return ser.truncatedNode()
	}
	ser.depth++
	defer func() { ser.depth-- }()

	s := ser.s
	typ := s.Get(t)
	if typ == nil {
		return ser.keyword(ast.KindAnyKeyword)
	}
	if alias := typ.Alias(); alias != nil && ser.ctx.Flags.Has(UseAliasNames) {
		if node, ok := ser.symbolReference(alias.Symbol, alias.Args, t); ok {
			return node
		}
	}
	f := typ.Flags()
	switch {
	case f&types.FlagEnumLiteral != 0 && typ.Symbol().IsPresent():
		if node, ok := ser.symbolReference(typ.Symbol(), nil, t); ok {
			return node
		}
		return ser.literalNode(t)
	case f&types.FlagLiteral != 0:
		return ser.literalNode(t)
	case f&types.FlagUnion != 0 && f&types.FlagBoolean != 0:
		return ser.keyword(ast.KindBooleanKeyword)
	case f&types.FlagUnion != 0:
		return ser.unionNode(s.Members(t))
	case f&types.FlagIntersection != 0:
		return ser.factory.NewIntersectionType(noRange, ser.typeList(s.Members(t), 3))
	case f&types.FlagTypeParameter != 0:
		return ser.typeParameterName(t)
	case f&types.FlagIndex != 0:
		ser.grow(6)
		return ser.factory.New(ast.KindTypeOperator, noRange, ast.NoFlags, &ast.TypeOperator{
			Operator: ast.KindKeyOfKeyword,
			Type:     ser.typeToNode(types.As[types.IndexType](typ).Target),
		})
	case f&types.FlagIndexedAccess != 0:
		d := types.As[types.IndexedAccessType](typ)
		ser.grow(2)
		return ser.factory.New(ast.KindIndexedAccessType, noRange, ast.NoFlags, &ast.IndexedAccessType{
			ObjectType: ser.typeToNode(d.Object),
			IndexType:  ser.typeToNode(d.Index),
		})
	case f&types.FlagConditional != 0:
		return ser.conditionalNode(types.As[types.ConditionalType](typ))
	case f&types.FlagTemplateLiteral != 0:
		return ser.templateNode(types.As[types.TemplateLiteralType](typ))
	case f&types.FlagObject != 0:
		return ser.objectNode(t, typ)
	}
	if kind, ok := intrinsicKinds[s.IntrinsicName(t)]; ok {
		return ser.keyword(kind)
	}
	return ser.keyword(ast.KindAnyKeyword)
}

func (ser *serializer) literalNode(t types.TypeID) ast.NodeID {
	var lit ast.NodeID
	switch v := ser.s.LiteralValue(t).(type) {
	case string:
		ser.grow(len(v) + 2)
		lit = ser.factory.NewStringLiteral(noRange, v)
	case float64:
		lit = ser.factory.NewNumericLiteral(noRange, v)
		ser.grow(len(ast.FormatNumber(v)))
	case bool:
		kind := ast.KindFalseKeyword
		if v {
			kind = ast.KindTrueKeyword
		}
		lit = ser.keyword(kind)
	default:
		return ser.keyword(ast.KindAnyKeyword)
	}
	return ser.factory.NewLiteralType(noRange, lit)
}

// unionNode writes false | true members as boolean, and null and undefined last
func (ser *serializer) unionNode(members []types.TypeID) ast.NodeID {
	s := ser.s
	members = slices.Clone(members)
	slices.SortStableFunc(members, func(a, b types.TypeID) int {
		return nullRank(s, a) - nullRank(s, b)
	})
	hasTrue := slices.ContainsFunc(members, func(m types.TypeID) bool { return s.Regular(m) == s.True })
	hasFalse := slices.ContainsFunc(members, func(m types.TypeID) bool { return s.Regular(m) == s.False })
	var nodes []ast.NodeID
	wroteBoolean := false
	for _, m := range members {
		if ser.overBudget() {
			nodes = append(nodes, ser.truncatedNode())
			break
		}
		if hasTrue && hasFalse && (s.Regular(m) == s.True || s.Regular(m) == s.False) {
			if !wroteBoolean {
				nodes = append(nodes, ser.keyword(ast.KindBooleanKeyword))
				wroteBoolean = true
			}
			continue
		}
		ser.grow(3)
		nodes = append(nodes, ser.typeToNode(m))
	}
	if len(nodes) == 1 {
		return nodes[0]
	}
	return ser.factory.NewUnionType(noRange, nodes)
}

func nullRank(s *types.Store, t types.TypeID) int {
	if s.Is(t, types.FlagNullable) {
		return 1
	}
	return 0
}

// typeList serializes ts, cutting the list short once over budget
func (ser *serializer) typeList(ts []types.TypeID, separator int) []ast.NodeID {
	nodes := make([]ast.NodeID, 0, len(ts))
	for _, t := range ts {
		if ser.overBudget() {
			return append(nodes, ser.truncatedNode())
		}
		ser.grow(separator)
		nodes = append(nodes, ser.typeToNode(t))
	}
	return nodes
}

func (ser *serializer) typeParameterName(t types.TypeID) ast.NodeID {
	name := types.As[types.TypeParameter](ser.s.Get(t)).Name
	if name == "" {
		name = "T"
	}
	return ser.factory.NewTypeReference(noRange, ser.identifier(name), nil)
}

// symbolReference writes a named reference to symbol with type arguments. It
// fails when the name is not accessible and structural fallback is allowed.
func (ser *serializer) symbolReference(symbol binder.SymbolID, args []types.TypeID, t types.TypeID) (ast.NodeID, bool) {
	if ser.symbols == nil || !symbol.IsPresent() {
		return ast.NoNode, false
	}
	names, ok := ser.symbols.EntityName(symbol, ser.ctx.Enclosing)
	if len(names) == 0 {
		return ast.NoNode, false
	}
	if !ok {
		if ser.ctx.Flags.Has(AllowStructuralFallback) {
			return ast.NoNode, false
		}
		qualified := names[0]
		for _, n := range names[1:] {
			qualified += "." + n
		}
		if !slices.Contains(ser.inaccessible, qualified) {
			ser.inaccessible = append(ser.inaccessible, qualified)
		}
	}
	var argNodes []ast.NodeID
	if len(args) > 0 {
		ser.grow(2)
		argNodes = ser.typeList(args, 2)
	}
	return ser.factory.NewTypeReference(noRange, ser.entityName(names), argNodes), true
}

func (ser *serializer) objectNode(t types.TypeID, typ *types.Type) ast.NodeID {
	s := ser.s
	if tuple := s.TupleTarget(t); tuple != nil {
		return ser.tupleNode(tuple, s.TupleElements(t))
	}
	if s.IsArray(t) {
		ser.grow(2)
		return ser.factory.New(ast.KindArrayType, noRange, ast.NoFlags, &ast.ArrayType{ElementType: ser.typeToNode(s.ElementType(t))})
	}
	target := s.TargetOf(t)
	if of := s.ObjectFlags(target); of&types.ObjectClassOrInterface != 0 {
		if node, ok := ser.symbolReference(s.Get(target).Symbol(), s.TypeArguments(t), t); ok {
			return node
		}
	}
	if s.IsGenericMapped(t) {
		return ser.mappedNode(types.As[types.MappedType](typ))
	}
	return ser.expand(t)
}

func (ser *serializer) tupleNode(tuple *types.InterfaceType, elems []types.TypeID) ast.NodeID {
	s := ser.s
	ser.grow(2)
	var nodes []ast.NodeID
	for i, e := range elems {
		if ser.overBudget() {
			nodes = append(nodes, ser.truncatedNode())
			break
		}
		ser.grow(2)
		switch {
		case tuple.ElementFlags[i]&types.ElementRest != 0:
			nodes = append(nodes, ser.factory.New(ast.KindArrayType, noRange, ast.NoFlags, &ast.ArrayType{ElementType: ser.typeToNode(e)}))
		case tuple.ElementFlags[i]&types.ElementOptional != 0:
			nodes = append(nodes, ser.unionNode([]types.TypeID{e, s.Undefined}))
		default:
			nodes = append(nodes, ser.typeToNode(e))
		}
	}
	var flags ast.NodeFlags
	if tuple.Readonly {
		flags = ast.FlagReadonly
	}
	return ser.factory.New(ast.KindTupleType, noRange, flags, &ast.TupleType{Elements: nodes})
}

// expand writes the members of an object type as a type literal, or as a
// function type when it has a single signature and nothing else
func (ser *serializer) expand(t types.TypeID) ast.NodeID {
	id := uint32(t)
	if ser.visited.Contains(id) {
		return ser.truncatedNode()
	}
	ser.visited.Add(id)
	defer ser.visited.Remove(id)

	s := ser.s
	m := s.ResolvedMembers(t)
	if len(m.Properties) == 0 && m.StringIndex == nil && m.NumberIndex == nil {
		switch {
		case len(m.CallSignatures) == 1 && len(m.ConstructSignatures) == 0:
			return ser.signatureNode(ast.KindFunctionType, m.CallSignatures[0], "")
		case len(m.ConstructSignatures) == 1 && len(m.CallSignatures) == 0:
			return ser.signatureNode(ast.KindConstructorType, m.ConstructSignatures[0], "")
		}
	}
	ser.grow(4)
	var members []ast.NodeID
	for _, sig := range m.CallSignatures {
		members = append(members, ser.signatureNode(ast.KindCallSignature, sig, ""))
	}
	for _, sig := range m.ConstructSignatures {
		members = append(members, ser.signatureNode(ast.KindConstructSignature, sig, ""))
	}
	for _, number := range []bool{false, true} {
		info := m.IndexInfo(number)
		if info == nil {
			continue
		}
		keyType := s.String
		if number {
			keyType = s.Number
		}
		ser.grow(9)
		param := ser.factory.New(ast.KindParameter, noRange, ast.NoFlags, &ast.Parameter{
			Name: ser.identifier("key"),
			Type: ser.typeToNode(keyType),
		})
		var flags ast.NodeFlags
		if info.Readonly {
			flags = ast.FlagReadonly
		}
		members = append(members, ser.factory.New(ast.KindIndexSignature, noRange, flags, &ast.IndexSignature{
			Parameter: param,
			Type:      ser.typeToNode(info.Type),
		}))
	}
	for _, p := range m.Properties {
		if ser.overBudget() {
			members = append(members, ser.truncatedProperty())
			break
		}
		members = append(members, ser.propertyNode(p))
	}
	return ser.factory.New(ast.KindTypeLiteral, noRange, ast.NoFlags, &ast.TypeLiteral{Members: members})
}

func (ser *serializer) truncatedProperty() ast.NodeID {
	return ser.factory.New(ast.KindPropertySignature, noRange, ast.NoFlags, &ast.PropertySignature{
		Name: ser.truncatedNode(),
	})
}

func (ser *serializer) propertyName(name string) ast.NodeID {
	text := ast.UnescapeName(name)
	if isIdentifierName(text) || types.IsNumericName(text) {
		return ser.identifier(text)
	}
	ser.grow(len(text) + 2)
	return ser.factory.NewStringLiteral(noRange, text)
}

func (ser *serializer) propertyNode(p *types.Property) ast.NodeID {
	s := ser.s
	var flags ast.NodeFlags
	if p.IsOptional() {
		flags |= ast.FlagOptional
	}
	if p.Flags.IsReadonly() {
		flags |= ast.FlagReadonly
		ser.grow(9)
	}
	t := s.PropertyType(p)
	if p.Flags.IsMethod() && !p.IsOptional() {
		if sigs := s.SignaturesOf(t, types.SignatureCall); len(sigs) == 1 {
			return ser.signatureNode(ast.KindMethodSignature, sigs[0], p.Name)
		}
	}
	if p.IsOptional() {
		t = s.RemoveNullable(t)
	}
	ser.grow(4)
	return ser.factory.New(ast.KindPropertySignature, noRange, flags, &ast.PropertySignature{
		Name: ser.propertyName(p.Name),
		Type: ser.typeToNode(t),
	})
}

func (ser *serializer) signatureNode(kind ast.Kind, sig *types.Signature, name string) ast.NodeID {
	s := ser.s
	d := &ast.SignatureDeclaration{}
	if name != "" {
		d.Name = ser.propertyName(name)
	}
	if len(sig.TypeParameters) > 0 {
		ser.grow(2)
		for _, tp := range sig.TypeParameters {
			d.TypeParameters = append(d.TypeParameters, ser.typeParameterDeclaration(tp))
		}
	}
	ser.grow(6)
	for i, p := range sig.Params {
		if ser.overBudget() {
			break
		}
		var flags ast.NodeFlags
		last := i == len(sig.Params)-1
		if sig.HasRest() && last {
			flags |= ast.FlagRest
			ser.grow(3)
		} else if i >= sig.MinArgs {
			flags |= ast.FlagOptional
			ser.grow(1)
		}
		paramName := p.Name
		if paramName == "" {
			paramName = "arg" + strconv.Itoa(i)
		}
		pt := p.Type
		if flags&ast.FlagOptional != 0 {
			pt = s.RemoveNullable(pt)
		}
		ser.grow(2)
		d.Parameters = append(d.Parameters, ser.factory.New(ast.KindParameter, noRange, flags, &ast.Parameter{
			Name: ser.identifier(paramName),
			Type: ser.typeToNode(pt),
		}))
	}
	if pred := sig.Predicate; pred != nil {
		d.Type = ser.predicateNode(pred)
	} else {
		d.Type = ser.typeToNode(s.ReturnType(sig))
	}
	return ser.factory.New(kind, noRange, ast.NoFlags, d)
}

func (ser *serializer) predicateNode(pred *types.TypePredicate) ast.NodeID {
	var flags ast.NodeFlags
	if pred.Kind.IsAsserts() {
		flags = ast.FlagAsserts
		ser.grow(8)
	}
	var paramName ast.NodeID
	if pred.Kind == types.PredicateThis || pred.Kind == types.PredicateAssertsThis {
		paramName = ser.factory.New(ast.KindThisType, noRange, ast.NoFlags, &ast.Keyword{})
		ser.grow(4)
	} else {
		paramName = ser.identifier(pred.ParameterName)
	}
	d := &ast.TypePredicate{ParameterName: paramName}
	if pred.Type.IsPresent() {
		ser.grow(4)
		d.Type = ser.typeToNode(pred.Type)
	}
	return ser.factory.New(ast.KindTypePredicate, noRange, flags, d)
}

func (ser *serializer) typeParameterDeclaration(tp types.TypeID) ast.NodeID {
	s := ser.s
	name := types.As[types.TypeParameter](s.Get(tp)).Name
	if name == "" {
		name = "T"
	}
	d := &ast.TypeParameter{Name: ser.identifier(name)}
	if c := s.ConstraintOf(tp); c.IsPresent() {
		ser.grow(9)
		d.Constraint = ser.typeToNode(c)
	}
	if def := s.DefaultOf(tp); def.IsPresent() {
		ser.grow(3)
		d.Default = ser.typeToNode(def)
	}
	return ser.factory.New(ast.KindTypeParameter, noRange, ast.NoFlags, d)
}

func (ser *serializer) mappedNode(d *types.MappedType) ast.NodeID {
	s := ser.s
	var flags ast.NodeFlags
	switch {
	case d.Modifiers&types.IncludeReadonly != 0:
		flags |= ast.FlagReadonly
	case d.Modifiers&types.ExcludeReadonly != 0:
		flags |= ast.FlagReadonlyMinus
	}
	switch {
	case d.Modifiers&types.IncludeOptional != 0:
		flags |= ast.FlagOptional
	case d.Modifiers&types.ExcludeOptional != 0:
		flags |= ast.FlagOptionalMinus
	}
	ser.grow(12)
	param := ser.factory.New(ast.KindTypeParameter, noRange, ast.NoFlags, &ast.TypeParameter{
		Name:       ser.identifier(types.As[types.TypeParameter](s.Get(d.TypeParameter)).Name),
		Constraint: ser.typeToNode(s.Instantiate(d.ConstraintType, d.Mapper)),
	})
	return ser.factory.New(ast.KindMappedType, noRange, flags, &ast.MappedType{
		TypeParameter: param,
		Type:          ser.typeToNode(s.Instantiate(d.TemplateType, d.Mapper)),
	})
}

func (ser *serializer) conditionalNode(d *types.ConditionalType) ast.NodeID {
	s := ser.s
	ser.grow(14)
	return ser.factory.New(ast.KindConditionalType, noRange, ast.NoFlags, &ast.ConditionalType{
		CheckType:   ser.typeToNode(d.CheckType),
		ExtendsType: ser.typeToNode(d.ExtendsType),
		TrueType:    ser.typeToNode(s.Instantiate(d.Root.TrueType, d.Mapper)),
		FalseType:   ser.typeToNode(s.Instantiate(d.Root.FalseType, d.Mapper)),
	})
}

func (ser *serializer) templateNode(d *types.TemplateLiteralType) ast.NodeID {
	lit := &ast.TemplateLiteralType{Head: d.Texts[0]}
	ser.grow(len(d.Texts[0]) + 2)
	for i, hole := range d.Types {
		ser.grow(len(d.Texts[i+1]) + 3)
		lit.Spans = append(lit.Spans, ser.factory.New(ast.KindTemplateLiteralTypeSpan, noRange, ast.NoFlags, &ast.TemplateLiteralTypeSpan{
			Type:    ser.typeToNode(hole),
			Literal: d.Texts[i+1],
		}))
	}
	return ser.factory.New(ast.KindTemplateLiteralType, noRange, ast.NoFlags, lit)
}

func isIdentifierName(text string) bool {
	if text == "" {
		return false
	}
	for i, r := range text {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
