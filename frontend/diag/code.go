package diag

import "fmt"

type Category uint8

const (
	Error Category = iota
	Warning
	Suggestion
	Message
)

func (c Category) String() string {
	switch c {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Suggestion:
		return "suggestion"
	case Message:
		return "message"
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// Code identifies the kind of problem a Diagnostic reports.
// Codes are stable: tests and users match on them.
type Code int

const (
	None Code = 0

	// syntax
	UnterminatedStringLiteral Code = 1002
	IdentifierExpected        Code = 1003
	TokenExpected             Code = 1005
	UnexpectedToken           Code = 1012
	RestParameterMustBeLast   Code = 1014
	ExpressionExpected        Code = 1109
	TypeExpected              Code = 1110
	InvalidCharacter          Code = 1127
	DeclarationExpected       Code = 1128
	StatementExpected         Code = 1129
	UnterminatedTemplate      Code = 1160
	InvalidNumericLiteral     Code = 1125

	// binding
	DuplicateIdentifier           Code = 2300
	CannotRedeclareBlockScoped    Code = 2451
	DuplicateFunctionImpl         Code = 2393
	JumpTargetNotFound            Code = 1116
	EnumMemberMustHaveInitializer Code = 1061

	// checking
	CannotFindName                  Code = 2304
	ModuleHasNoExportedMember       Code = 2305
	CannotFindModule                Code = 2307
	WrongTypeArgumentCount          Code = 2314
	TypeIsNotGeneric                Code = 2315
	ExcessiveStackDepth             Code = 2321
	NotAssignable                   Code = 2322
	PropertyTypesIncompatible       Code = 2326
	PropertyOptionalInSource        Code = 2327
	ParameterTypesIncompatible      Code = 2328
	IndexSignatureMissing           Code = 2329
	PropertyDoesNotExist            Code = 2339
	TypeArgumentConstraint          Code = 2344
	ArgumentNotAssignable           Code = 2345
	NotCallable                     Code = 2349
	NotConstructable                Code = 2351
	ConversionMayBeMistake          Code = 2352
	ExcessProperty                  Code = 2353
	ArithmeticOperand               Code = 2362
	OperatorCannotBeApplied         Code = 2365
	NoCommonOverlap                 Code = 2367
	LacksEndingReturn               Code = 2366
	CannotAssignToConstant          Code = 2588
	InstantiationExcessivelyDeep    Code = 2589
	PropertyMissing                 Code = 2741
	ObjectPossiblyNull              Code = 2531
	ObjectPossiblyUndefined         Code = 2532
	ObjectPossiblyNullOrUndefined   Code = 2533
	UsedBeforeDeclaration           Code = 2448
	CircularTypeAlias               Code = 2456
	ImplicitlyHasReturnTypeAny      Code = 7023
	IncorrectlyExtendsInterface     Code = 2430
	IncorrectlyImplements           Code = 2420
	ExpectedArguments               Code = 2554
	ExpectedAtLeastArguments        Code = 2555
	NoOverloadMatches               Code = 2769
	OverloadFailed                  Code = 2772
	AssertionRequiresAnnotation     Code = 2775
	CallSignatureIncompatible       Code = 2419
	ExcessiveComplexity             Code = 2859
	SignatureReturnIncompatible     Code = 2418
	UnreachableCode                 Code = 7027
	NotAllPathsReturn               Code = 7030
	TargetRequiresMoreElements      Code = 2618
	TypeParameterInferenceFailed    Code = 2453
	NoInferenceCandidate            Code = 2454
	InaccessibleName                Code = 4025
	SerializationTruncated          Code = 7056
	NotAllConstituentsAssignable    Code = 2590
	UnionConstituentNotAssignable   Code = 2591
	IndexTypeNotValid               Code = 2538
	ElementImplicitlyAny            Code = 7053
	NotIterable                     Code = 2488
	CannotAssignToReadonly          Code = 2540
	NotAllPathsReturnValue          Code = 2355
	NamespaceHasNoExportedMember    Code = 2694
)

type codeInfo struct {
	category Category
	format   string
}

var codes = map[Code]codeInfo{
	None: {Error, "%v"},

	UnterminatedStringLiteral: {Error, "Unterminated string literal."},
	IdentifierExpected:        {Error, "Identifier expected."},
	TokenExpected:             {Error, "'%s' expected."},
	UnexpectedToken:           {Error, "Unexpected token '%s'."},
	RestParameterMustBeLast:   {Error, "A rest parameter must be last in a parameter list."},
	ExpressionExpected:        {Error, "Expression expected."},
	TypeExpected:              {Error, "Type expected."},
	InvalidCharacter:          {Error, "Invalid character."},
	DeclarationExpected:       {Error, "Declaration or statement expected."},
	StatementExpected:         {Error, "Statement expected."},
	UnterminatedTemplate:      {Error, "Unterminated template literal."},
	InvalidNumericLiteral:     {Error, "Invalid numeric literal '%s'."},

	DuplicateIdentifier:           {Error, "Duplicate identifier '%s'."},
	CannotRedeclareBlockScoped:    {Error, "Cannot redeclare block-scoped variable '%s'."},
	DuplicateFunctionImpl:         {Error, "Duplicate function implementation."},
	JumpTargetNotFound:            {Error, "A '%s' statement can only jump to a label of an enclosing statement."},
	EnumMemberMustHaveInitializer: {Error, "Enum member must have initializer."},

	CannotFindName:                {Error, "Cannot find name '%s'."},
	ModuleHasNoExportedMember:     {Error, "Module '%s' has no exported member '%s'."},
	CannotFindModule:              {Error, "Cannot find module '%s'."},
	WrongTypeArgumentCount:        {Error, "Generic type '%s' requires %d type argument(s)."},
	TypeIsNotGeneric:              {Error, "Type '%s' is not generic."},
	ExcessiveStackDepth:           {Error, "Excessive stack depth comparing types '%s' and '%s'."},
	NotAssignable:                 {Error, "Type '%s' is not assignable to type '%s'."},
	PropertyTypesIncompatible:     {Error, "Types of property '%s' are incompatible."},
	PropertyOptionalInSource:      {Error, "Property '%s' is optional in type '%s' but required in type '%s'."},
	ParameterTypesIncompatible:    {Error, "Types of parameters '%s' and '%s' are incompatible."},
	IndexSignatureMissing:         {Error, "Index signature for type '%s' is missing in type '%s'."},
	PropertyDoesNotExist:          {Error, "Property '%s' does not exist on type '%s'."},
	TypeArgumentConstraint:        {Error, "Type '%s' does not satisfy the constraint '%s'."},
	ArgumentNotAssignable:         {Error, "Argument of type '%s' is not assignable to parameter of type '%s'."},
	NotCallable:                   {Error, "This expression is not callable. Type '%s' has no call signatures."},
	NotConstructable:              {Error, "This expression is not constructable. Type '%s' has no construct signatures."},
	ConversionMayBeMistake:        {Error, "Conversion of type '%s' to type '%s' may be a mistake because neither type sufficiently overlaps with the other."},
	ExcessProperty:                {Error, "Object literal may only specify known properties, and '%s' does not exist in type '%s'."},
	ArithmeticOperand:             {Error, "The operand of an arithmetic operation must be of type 'any', 'number' or an enum type."},
	OperatorCannotBeApplied:       {Error, "Operator '%s' cannot be applied to types '%s' and '%s'."},
	NoCommonOverlap:               {Error, "This comparison appears to be unintentional because the types '%s' and '%s' have no overlap."},
	LacksEndingReturn:             {Error, "Function lacks ending return statement and return type does not include 'undefined'."},
	CannotAssignToConstant:        {Error, "Cannot assign to '%s' because it is a constant."},
	InstantiationExcessivelyDeep:  {Error, "Type instantiation is excessively deep and possibly infinite."},
	PropertyMissing:               {Error, "Property '%s' is missing in type '%s' but required in type '%s'."},
	ObjectPossiblyNull:            {Error, "'%s' is possibly 'null'."},
	ObjectPossiblyUndefined:       {Error, "'%s' is possibly 'undefined'."},
	ObjectPossiblyNullOrUndefined: {Error, "'%s' is possibly 'null' or 'undefined'."},
	UsedBeforeDeclaration:         {Error, "Block-scoped variable '%s' used before its declaration."},
	CircularTypeAlias:             {Error, "Type alias '%s' circularly references itself."},
	ImplicitlyHasReturnTypeAny:    {Error, "'%s' implicitly has return type 'any' because it does not have a return type annotation and is referenced directly or indirectly in one of its return expressions."},
	IncorrectlyExtendsInterface:   {Error, "Interface '%s' incorrectly extends interface '%s'."},
	IncorrectlyImplements:         {Error, "Class '%s' incorrectly implements interface '%s'."},
	ExpectedArguments:             {Error, "Expected %d arguments, but got %d."},
	ExpectedAtLeastArguments:      {Error, "Expected at least %d arguments, but got %d."},
	NoOverloadMatches:             {Error, "No overload matches this call."},
	OverloadFailed:                {Error, "Overload %d of %d, '%s', gave the following error."},
	AssertionRequiresAnnotation:   {Error, "Assertions require the call target to be an identifier or qualified name."},
	CallSignatureIncompatible:     {Error, "Call signatures are incompatible."},
	ExcessiveComplexity:           {Error, "Expression produces a type comparison that is too complex to represent."},
	SignatureReturnIncompatible:   {Error, "Return types of the signatures are incompatible."},
	UnreachableCode:               {Error, "Unreachable code detected."},
	NotAllPathsReturn:             {Error, "Not all code paths return a value."},
	TargetRequiresMoreElements:    {Error, "Target requires %d element(s) but source may have fewer."},
	TypeParameterInferenceFailed:  {Error, "The type argument for type parameter '%s' cannot be inferred from the usage."},
	NoInferenceCandidate:          {Suggestion, "No inference candidates were found for type parameter '%s'; using '%s'."},
	InaccessibleName:              {Error, "Type '%s' refers to '%s', which is not accessible from this location."},
	SerializationTruncated:        {Error, "The inferred type of this node exceeds the maximum length the compiler will serialize."},
	NotAllConstituentsAssignable:  {Error, "Not every constituent of '%s' is assignable to '%s'."},
	UnionConstituentNotAssignable: {Error, "Type '%s' is not assignable to any constituent of '%s'."},
	IndexTypeNotValid:             {Error, "Type '%s' cannot be used as an index type."},
	ElementImplicitlyAny:          {Error, "Element implicitly has an 'any' type because expression of type '%s' can't be used to index type '%s'."},
	NotIterable:                   {Error, "Type '%s' must have a '[Symbol.iterator]()' method that returns an iterator."},
	CannotAssignToReadonly:        {Error, "Cannot assign to '%s' because it is a read-only property."},
	NotAllPathsReturnValue:        {Error, "A function whose declared type is neither 'undefined', 'void', nor 'any' must return a value."},
	NamespaceHasNoExportedMember:  {Error, "Namespace '%s' has no exported member '%s'."},
}

func (c Code) Category() Category {
	if info, ok := codes[c]; ok {
		return info.category
	}
	return Error
}

// Format renders the message template of c with args
func (c Code) Format(args ...any) string {
	info, ok := codes[c]
	if !ok {
		return fmt.Sprint(args...)
	}
	return fmt.Sprintf(info.format, args...)
}

func (c Code) String() string {
	return fmt.Sprintf("E%04d", int(c))
}
