package ast

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// EscapeName returns the canonical symbol-table key for an identifier's text.
// Texts are NFC normalised so that differently encoded spellings of one name
// share a symbol. Names starting with "__" get an extra underscore so they can
// never collide with the internal names built by InternalName.
func EscapeName(text string) string {
	text = norm.NFC.String(text)
	if strings.HasPrefix(text, "__") {
		return "_" + text
	}
	return text
}

// UnescapeName reverses EscapeName
func UnescapeName(name string) string {
	if strings.HasPrefix(name, "___") {
		return name[1:]
	}
	return name
}

// InternalName builds a key for anonymous entities such as call signatures
func InternalName(name string) string {
	return "__" + name
}

const (
	CallName        = "__call"
	NewName         = "__new"
	IndexName       = "__index"
	ConstructorName = "__constructor"
	TypeName        = "__type"
	ObjectName      = "__object"
	FunctionName    = "__function"
	ClassName       = "__class"
	MissingName     = "__missing"
)

// IsInternalName reports names produced by InternalName
func IsInternalName(name string) bool {
	return strings.HasPrefix(name, "__") && !strings.HasPrefix(name, "___")
}
