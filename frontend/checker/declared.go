package checker

import (
	"math"
	"strconv"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/types"
)

// declaredTypeOfSymbol is the type a symbol denotes when named in a type
// position: the instance type of a class, an interface, a type alias, an
// enum or enum member, or a type parameter
func (c *Checker) declaredTypeOfSymbol(id binder.SymbolID) types.TypeID {
	id = c.b.Merged(id)
	sym := c.b.Symbol(id)
	if sym == nil {
		return c.s.Error
	}
	l := c.linksOf(id)
	switch l.declaredState {
	case resolved:
		return l.declared
	case resolving:
		if sym.Flags().IsTypeAlias() {
			l.circular = true
		}
		return c.s.Error
	}
	l.declaredState = resolving
	t := c.computeDeclaredType(sym)
	l.declared, l.declaredState = t, resolved
	return t
}

func (c *Checker) computeDeclaredType(sym *binder.Symbol) types.TypeID {
	flags := sym.Flags()
	switch {
	case flags.IsAlias():
		target := c.resolveAlias(sym.ID())
		if target == sym.ID() || !c.symbolFlags(target).IsType() {
			return c.s.Error
		}
		return c.declaredTypeOfSymbol(target)
	case flags.IsClass() || flags.IsInterface():
		return c.interfaceTypeOf(sym)
	case flags.IsTypeAlias():
		return c.aliasTypeOf(sym)
	case flags.IsEnum():
		return c.enumTypeOf(sym)
	case flags.IsEnumMember():
		c.declaredTypeOfSymbol(sym.Parent)
		if l := c.linksOf(sym.ID()); l.declared.IsPresent() {
			return l.declared
		}
		return c.s.Number
	case flags.IsTypeParameter():
		return c.typeParameterOf(sym.FirstDeclaration())
	}
	return c.s.Error
}

func (c *Checker) aliasTypeOf(sym *binder.Symbol) types.TypeID {
	var d *ast.TypeAliasDeclaration
	for _, decl := range sym.Declarations {
		if d = ast.As[ast.TypeAliasDeclaration](c.store.Get(decl)); d != nil {
			break
		}
	}
	if d == nil {
		return c.s.Error
	}
	tps := c.typeParametersOf(d.TypeParameters)
	t := c.typeFromTypeNode(d.Type)
	if l := c.linksOf(sym.ID()); l.circular {
		c.error(d.Name, diag.CircularTypeAlias, sym.DisplayName())
		return c.s.Error
	}
	if len(tps) > 0 {
		c.s.RegisterAlias(sym.ID(), tps, t)
	}
	return t
}

// interfaceTypeOf creates the declared type of a class or interface, merging
// the members of all its declarations
func (c *Checker) interfaceTypeOf(sym *binder.Symbol) types.TypeID {
	var tps []types.TypeID
	var first ast.NodeID
	flags := types.ObjectInterface
	for _, decl := range sym.Declarations {
		n := c.store.Get(decl)
		var own []ast.NodeID
		switch n.Kind() {
		case ast.KindClassDeclaration:
			own = ast.As[ast.ClassDeclaration](n).TypeParameters
			flags = types.ObjectClass
		case ast.KindInterfaceDeclaration:
			own = ast.As[ast.InterfaceDeclaration](n).TypeParameters
		default:
			continue
		}
		if !first.IsPresent() {
			first = decl
		}
		for _, tp := range c.typeParametersOf(own) {
			if !containsType(tps, tp) {
				tps = append(tps, tp)
			}
		}
	}
	return c.s.NewInterface(flags, sym.ID(), first, tps, func() *types.Members {
		m := types.NewMembers()
		c.addMemberTable(m, sym.Members)
		for _, base := range c.baseTypesOf(sym) {
			inheritMembers(c.s, m, base)
		}
		return m
	})
}

func containsType(ts []types.TypeID, t types.TypeID) bool {
	for _, u := range ts {
		if u == t {
			return true
		}
	}
	return false
}

// baseTypesOf resolves the extends clauses of every declaration of a class or interface
func (c *Checker) baseTypesOf(sym *binder.Symbol) []types.TypeID {
	var bases []types.TypeID
	for _, ref := range c.baseTypeNodes(sym) {
		t := c.typeFromTypeNode(ref)
		if c.s.Is(t, types.FlagObject) {
			bases = append(bases, t)
		}
	}
	return bases
}

func (c *Checker) baseTypeNodes(sym *binder.Symbol) []ast.NodeID {
	var refs []ast.NodeID
	for _, decl := range sym.Declarations {
		n := c.store.Get(decl)
		switch n.Kind() {
		case ast.KindClassDeclaration:
			if ext := ast.As[ast.ClassDeclaration](n).Extends; ext.IsPresent() {
				refs = append(refs, ext)
			}
		case ast.KindInterfaceDeclaration:
			refs = append(refs, ast.As[ast.InterfaceDeclaration](n).Extends...)
		}
	}
	return refs
}

// inheritMembers copies the members of base that m does not declare itself
func inheritMembers(s *types.Store, m *types.Members, base types.TypeID) {
	for _, p := range s.PropertiesOf(base) {
		if m.Property(p.Name) == nil {
			m.Add(p)
		}
	}
	if len(m.CallSignatures) == 0 {
		m.CallSignatures = s.SignaturesOf(base, types.SignatureCall)
	}
	if len(m.ConstructSignatures) == 0 {
		m.ConstructSignatures = s.SignaturesOf(base, types.SignatureConstruct)
	}
	if m.StringIndex == nil {
		m.StringIndex = s.IndexInfoOf(base, false)
	}
	if m.NumberIndex == nil {
		m.NumberIndex = s.IndexInfoOf(base, true)
	}
}

// addMemberTable adds the members declared in a class, interface or type
// literal member table
func (c *Checker) addMemberTable(m *types.Members, table *binder.SymbolTable) {
	for name, id := range table.All() {
		id = c.b.Merged(id)
		msym := c.b.Symbol(id)
		flags := msym.Flags()
		switch {
		case flags.IsTypeParameter() || flags.IsConstructor():
		case name == ast.CallName:
			for _, d := range msym.Declarations {
				m.CallSignatures = append(m.CallSignatures, c.signatureOf(d))
			}
		case name == ast.NewName:
			for _, d := range msym.Declarations {
				m.ConstructSignatures = append(m.ConstructSignatures, c.signatureOf(d))
			}
		case name == ast.IndexName:
			for _, d := range msym.Declarations {
				if info := c.indexInfoOf(d); info != nil {
					if c.s.Is(info.KeyType, types.FlagNumber) {
						m.NumberIndex = info
					} else {
						m.StringIndex = info
					}
				}
			}
		case flags.IsProperty() || flags.IsMethod():
			m.Add(c.propertyOfSymbol(name, msym))
		}
	}
}

func (c *Checker) propertyOfSymbol(name string, sym *binder.Symbol) *types.Property {
	var pflags types.PropertyFlags
	if sym.Flags().IsOptional() {
		pflags |= types.PropertyOptional
	}
	if sym.Flags().IsMethod() {
		pflags |= types.PropertyMethod
	}
	decl := c.store.Get(sym.FirstDeclaration())
	if decl != nil && decl.Flags().IsReadonly() {
		pflags |= types.PropertyReadonly
	}
	id := sym.ID()
	p := types.NewLazyProperty(name, pflags, func() types.TypeID { return c.typeOfSymbol(id) })
	p.Symbol = id
	p.Declaration = sym.FirstDeclaration()
	return p
}

func (c *Checker) indexInfoOf(decl ast.NodeID) *types.IndexInfo {
	n := c.store.Get(decl)
	d := ast.As[ast.IndexSignature](n)
	if d == nil {
		return nil
	}
	key := c.s.String
	if param := ast.As[ast.Parameter](c.store.Get(d.Parameter)); param != nil && param.Type.IsPresent() {
		key = c.typeFromTypeNode(param.Type)
	}
	valueType := c.s.Any
	if d.Type.IsPresent() {
		valueType = c.typeFromTypeNode(d.Type)
	}
	return &types.IndexInfo{KeyType: key, Type: valueType, Readonly: n.Flags().IsReadonly(), Declaration: decl}
}

// constructorTypeOf is the type of a class used as a value: its static
// members and its construct signatures
func (c *Checker) constructorTypeOf(sym *binder.Symbol) types.TypeID {
	var classDecl ast.NodeID
	for _, d := range sym.Declarations {
		if c.store.Kind(d) == ast.KindClassDeclaration {
			classDecl = d
			break
		}
	}
	return c.s.NewAnonymous(types.ObjectNone, sym.ID(), classDecl, c.outerTypeParameters(classDecl), func() *types.Members {
		m := types.NewMembers()
		for name, id := range sym.Exports.All() {
			id = c.b.Merged(id)
			msym := c.b.Symbol(id)
			if msym.Flags()&binder.Prototype != 0 {
				p := types.NewLazyProperty(name, types.PropertyReadonly, func() types.TypeID { return c.typeOfSymbol(id) })
				p.Symbol = id
				m.Add(p)
				continue
			}
			if msym.Flags().IsProperty() || msym.Flags().IsMethod() {
				m.Add(c.propertyOfSymbol(name, msym))
			}
		}
		baseCtor := c.baseConstructorTypeOf(sym)
		if baseCtor.IsPresent() {
			for _, p := range c.s.PropertiesOf(baseCtor) {
				if m.Property(p.Name) == nil {
					m.Add(p)
				}
			}
		}
		m.ConstructSignatures = c.constructSignaturesOf(sym, baseCtor)
		return m
	})
}

// baseConstructorTypeOf is the type of the class a class extends, or NoType
func (c *Checker) baseConstructorTypeOf(sym *binder.Symbol) types.TypeID {
	for _, d := range sym.Declarations {
		class := ast.As[ast.ClassDeclaration](c.store.Get(d))
		if class == nil || !class.Extends.IsPresent() {
			continue
		}
		ref := ast.As[ast.TypeReference](c.store.Get(class.Extends))
		if ref == nil {
			return types.NoType
		}
		base := c.resolveEntityName(ref.TypeName, binder.Value, false)
		if !base.IsPresent() || !c.symbolFlags(base).IsClass() {
			return types.NoType
		}
		return c.typeOfSymbol(base)
	}
	return types.NoType
}

// constructSignaturesOf lists the declared constructors of a class. A class
// without one inherits those of its base, or gets a constructor without parameters.
func (c *Checker) constructSignaturesOf(sym *binder.Symbol, baseCtor types.TypeID) []*types.Signature {
	var sigs []*types.Signature
	if id, ok := sym.Members.Get(ast.ConstructorName); ok {
		ctor := c.b.Symbol(c.b.Merged(id))
		decls := ctor.Declarations
		if len(decls) > 1 {
			var overloads []ast.NodeID
			for _, d := range decls {
				if !ast.Body(c.store.Get(d)).IsPresent() {
					overloads = append(overloads, d)
				}
			}
			if len(overloads) > 0 {
				decls = overloads
			}
		}
		for _, d := range decls {
			sigs = append(sigs, c.signatureOf(d))
		}
		return sigs
	}
	instance := c.instanceTypeOf(sym.ID())
	tps := c.s.TypeParametersOf(c.declaredTypeOfSymbol(sym.ID()))
	if baseCtor.IsPresent() {
		baseInstance := types.NoType
		if bases := c.baseTypesOf(sym); len(bases) > 0 {
			baseInstance = bases[0]
		}
		for _, base := range c.s.SignaturesOf(baseCtor, types.SignatureConstruct) {
			if len(base.TypeParameters) > 0 && baseInstance.IsPresent() {
				base = c.s.SignatureInstantiation(base, c.s.TypeArguments(baseInstance))
			}
			sig := types.NewSignature(base.Params, base.MinArgs, instance)
			sig.Flags = base.Flags | types.SignatureConstruct
			sig.TypeParameters = tps
			sigs = append(sigs, sig)
		}
		if len(sigs) > 0 {
			return sigs
		}
	}
	sig := types.NewSignature(nil, 0, instance)
	sig.Flags = types.SignatureConstruct
	sig.TypeParameters = tps
	return []*types.Signature{sig}
}

// enumTypeOf computes the values of the members of an enum. The enum type is
// the union of its member types.
func (c *Checker) enumTypeOf(sym *binder.Symbol) types.TypeID {
	var memberTypes []types.TypeID
	for _, decl := range sym.Declarations {
		d := ast.As[ast.EnumDeclaration](c.store.Get(decl))
		if d == nil {
			continue
		}
		var next any = 0.0
		for _, member := range d.Members {
			id := c.b.SymbolOf(member)
			l := c.linksOf(id)
			value := next
			if init := ast.As[ast.EnumMember](c.store.Get(member)).Initializer; init.IsPresent() {
				value = c.enumConstant(init)
			}
			t := c.s.Number
			switch v := value.(type) {
			case float64:
				t = c.s.EnumLiteral(id, v)
				next = v + 1
			case string:
				t = c.s.EnumLiteral(id, v)
				next = nil
			default:
				next = nil
			}
			l.enumValue = value
			l.declared, l.declaredState = t, resolved
			memberTypes = append(memberTypes, t)
		}
	}
	if len(memberTypes) == 0 {
		return c.s.Number
	}
	return c.s.Union(memberTypes...)
}

// enumConstant evaluates a constant enum member initializer to a float64 or a
// string, or nil when it is not constant
func (c *Checker) enumConstant(id ast.NodeID) any {
	n := c.store.Get(c.store.SkipParentheses(id))
	if n == nil {
		return nil
	}
	switch n.Kind() {
	case ast.KindNumericLiteral:
		return ast.As[ast.LiteralExpression](n).Value
	case ast.KindStringLiteral, ast.KindNoSubstitutionTemplateLiteral:
		return ast.As[ast.LiteralExpression](n).Text
	case ast.KindPrefixUnaryExpression:
		d := ast.As[ast.UnaryExpression](n)
		v, ok := c.enumConstant(d.Operand).(float64)
		if !ok {
			return nil
		}
		switch d.Operator {
		case ast.KindMinusToken:
			return -v
		case ast.KindPlusToken:
			return v
		}
	case ast.KindBinaryExpression:
		d := ast.As[ast.BinaryExpression](n)
		left, right := c.enumConstant(d.Left), c.enumConstant(d.Right)
		if ls, ok := left.(string); ok && d.Operator == ast.KindPlusToken {
			if rs, ok := right.(string); ok {
				return ls + rs
			}
			if rv, ok := right.(float64); ok {
				return ls + ast.FormatNumber(rv)
			}
		}
		l, lok := left.(float64)
		r, rok := right.(float64)
		if !lok || !rok {
			return nil
		}
		switch d.Operator {
		case ast.KindPlusToken:
			return l + r
		case ast.KindMinusToken:
			return l - r
		case ast.KindAsteriskToken:
			return l * r
		case ast.KindSlashToken:
			return l / r
		case ast.KindPercentToken:
			return math.Mod(l, r)
		case ast.KindAmpersandToken:
			return float64(int32(l) & int32(r))
		case ast.KindBarToken:
			return float64(int32(l) | int32(r))
		}
	case ast.KindIdentifier:
		member := c.resolveName(n.ID(), c.store.Text(n.ID()), binder.EnumMember)
		return c.enumMemberValue(member)
	case ast.KindPropertyAccessExpression:
		d := ast.As[ast.PropertyAccessExpression](n)
		enum := c.resolveEntityName(d.Expression, binder.Enum, false)
		if exports := c.b.Exports(enum); exports != nil {
			if member, ok := exports.Get(ast.EscapeName(c.store.Text(d.Name))); ok {
				return c.enumMemberValue(member)
			}
		}
	}
	return nil
}

func (c *Checker) enumMemberValue(member binder.SymbolID) any {
	if !c.symbolFlags(member).IsEnumMember() {
		return nil
	}
	c.declaredTypeOfSymbol(member)
	return c.linksOf(c.b.Merged(member)).enumValue
}

// enumValueText renders an enum member value for display
func enumValueText(v any) string {
	switch v := v.(type) {
	case float64:
		return ast.FormatNumber(v)
	case string:
		return strconv.Quote(v)
	}
	return ""
}
