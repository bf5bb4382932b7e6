// Package symbol defines the canonical method identifier and the
// lightweight lexical index used to find candidate projects for a name
// without running full semantic analysis.
package symbol

import (
	"fmt"
	"strings"
)

// ID canonically identifies a method within a solution: the declaring
// type's fully-qualified name, the method's simple name, its ordered
// parameter type names, and its generic arity. Two methods with
// identical signatures in the same type produce an identical ID;
// overloads differ by ParameterTypes; a constructed-generic instance
// shares the open-generic ID (GenericArity records arity, not the
// instantiation's type arguments).
type ID struct {
	TypeName       string
	MethodName     string
	ParameterTypes []string
	GenericArity   int
}

// New builds a method ID, copying paramTypes so the result is safe to
// retain independent of the caller's slice.
func New(typeName, methodName string, paramTypes []string, genericArity int) ID {
	pt := make([]string, len(paramTypes))
	copy(pt, paramTypes)
	return ID{
		TypeName:       typeName,
		MethodName:     methodName,
		ParameterTypes: pt,
		GenericArity:   genericArity,
	}
}

// Constructor is the method name used for constructor MethodIDs,
// matching the convention object-creation expressions bind to.
const Constructor = ".ctor"

// Key returns the deterministic serialization used as the sole map key
// for call graphs and caches: `type.method(param,param)` with generic
// arity folded into the method name as a backtick suffix, the same
// convention .NET reflection uses for open-generic method names.
func (id ID) Key() string {
	name := id.MethodName
	if id.GenericArity > 0 {
		name = fmt.Sprintf("%s`%d", name, id.GenericArity)
	}
	return fmt.Sprintf("%s.%s(%s)", id.TypeName, name, strings.Join(id.ParameterTypes, ","))
}

// String implements fmt.Stringer as the Key serialization.
func (id ID) String() string {
	return id.Key()
}

// ParseKey reverses Key: given "Type.Method(param,param)" (with an
// optional generic-arity backtick suffix on the method name), it
// recovers an ID. Used by callers that accept a method id as a string
// (CLI flags, MCP tool arguments) rather than constructing an ID from
// a live declaration.
func ParseKey(key string) (ID, error) {
	open := strings.IndexByte(key, '(')
	if open < 0 || !strings.HasSuffix(key, ")") {
		return ID{}, fmt.Errorf("invalid method key %q: missing parameter list", key)
	}
	head := key[:open]
	paramsStr := key[open+1 : len(key)-1]

	var typeName, methodName string
	if strings.HasSuffix(head, "."+Constructor) {
		typeName = head[:len(head)-len("."+Constructor)]
		methodName = Constructor
	} else {
		dot := strings.LastIndexByte(head, '.')
		if dot < 0 {
			return ID{}, fmt.Errorf("invalid method key %q: missing type.method separator", key)
		}
		typeName = head[:dot]
		methodName = head[dot+1:]
	}

	arity := 0
	if bt := strings.IndexByte(methodName, '`'); bt >= 0 {
		n, err := fmt.Sscanf(methodName[bt+1:], "%d", &arity)
		if err != nil || n != 1 {
			return ID{}, fmt.Errorf("invalid method key %q: malformed generic arity", key)
		}
		methodName = methodName[:bt]
	}

	var params []string
	if paramsStr != "" {
		params = strings.Split(paramsStr, ",")
	}

	return New(typeName, methodName, params, arity), nil
}

// Info is the declaration metadata recorded the first time a method is
// seen. IsExternal marks a stub created when a call graph edge targets
// a method whose declaration was never visited (location unknown).
type Info struct {
	ID             ID
	SimpleName     string
	ContainingType string
	FilePath       string
	StartLine      int
	IsTest         bool
	IsExternal     bool
}
