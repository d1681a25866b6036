package mapping

// Conversion names a narrow representation fix a backend needs when a field
// crosses the logical/concrete boundary.
type Conversion uint8

const (
	ConvNone Conversion = iota
	// ConvHandleToString materializes an interned handle (SWC Atom) into an
	// owned string before comparison or concatenation.
	ConvHandleToString
	// ConvStringToHandle interns an owned string back into a handle on write.
	ConvStringToHandle
	// ConvOptionToNullable renders an explicit maybe-type as a nullable value.
	ConvOptionToNullable
	// ConvNullableToOption wraps a nullable value into an explicit maybe-type.
	ConvNullableToOption
	// ConvEnumToTag reads a sum-type discriminant as a plain tag value.
	ConvEnumToTag
)

func (c Conversion) String() string {
	switch c {
	case ConvNone:
		return "none"
	case ConvHandleToString:
		return "handle-to-string"
	case ConvStringToHandle:
		return "string-to-handle"
	case ConvOptionToNullable:
		return "option-to-nullable"
	case ConvNullableToOption:
		return "nullable-to-option"
	case ConvEnumToTag:
		return "enum-to-tag"
	}
	return "invalid"
}

// FieldMapping captures the field-level divergence between backends for one
// logical property of one node category. Logical properties are not always
// one hop away on both sides: SWC boxes sub-expressions and wraps member
// properties in their own sum type.
type FieldMapping struct {
	NodeType string
	// Field is the logical property name plugins use.
	Field string
	// Babel is the ESTree property name.
	Babel string
	// Swc is the Rust field name.
	Swc string
	// SwcType is the Rust type of the field, which doubles as the pattern
	// context for nested shape matches.
	SwcType string
	// NeedsDeref is set when the SWC field is boxed and reads go through a
	// dereference.
	NeedsDeref bool
	// Optional marks fields whose absence is representable.
	Optional bool
	// ValueType is the logical type of the field for the checker:
	// "str", "bool", "f64", "node", "nodelist".
	ValueType string
	ReadConv  Conversion
	WriteConv Conversion
}

var fieldMappings = []FieldMapping{
	// Identifier: the canonical handle-vs-string divergence.
	{NodeType: "Identifier", Field: "name", Babel: "name", Swc: "sym", SwcType: "Atom", ValueType: "str", ReadConv: ConvHandleToString, WriteConv: ConvStringToHandle},

	// MemberExpression.
	{NodeType: "MemberExpression", Field: "object", Babel: "object", Swc: "obj", SwcType: "Expr", NeedsDeref: true, ValueType: "node"},
	{NodeType: "MemberExpression", Field: "property", Babel: "property", Swc: "prop", SwcType: "MemberProp", ValueType: "node"},
	{NodeType: "MemberExpression", Field: "computed", Babel: "computed", Swc: "computed", SwcType: "bool", ValueType: "bool", ReadConv: ConvEnumToTag},

	// CallExpression.
	{NodeType: "CallExpression", Field: "callee", Babel: "callee", Swc: "callee", SwcType: "Callee", ValueType: "node"},
	{NodeType: "CallExpression", Field: "arguments", Babel: "arguments", Swc: "args", SwcType: "Vec<ExprOrSpread>", ValueType: "nodelist"},

	// FunctionDeclaration.
	{NodeType: "FunctionDeclaration", Field: "id", Babel: "id", Swc: "ident", SwcType: "Ident", ValueType: "node"},
	{NodeType: "FunctionDeclaration", Field: "params", Babel: "params", Swc: "function.params", SwcType: "Vec<Param>", ValueType: "nodelist"},
	{NodeType: "FunctionDeclaration", Field: "body", Babel: "body", Swc: "function.body", SwcType: "Option<BlockStmt>", Optional: true, ValueType: "node", ReadConv: ConvNullableToOption, WriteConv: ConvOptionToNullable},
	{NodeType: "FunctionDeclaration", Field: "async", Babel: "async", Swc: "function.is_async", SwcType: "bool", ValueType: "bool"},

	// VariableDeclaration.
	{NodeType: "VariableDeclaration", Field: "kind", Babel: "kind", Swc: "kind", SwcType: "VarDeclKind", ValueType: "str", ReadConv: ConvEnumToTag},
	{NodeType: "VariableDeclaration", Field: "declarations", Babel: "declarations", Swc: "decls", SwcType: "Vec<VarDeclarator>", ValueType: "nodelist"},

	// VariableDeclarator.
	{NodeType: "VariableDeclarator", Field: "id", Babel: "id", Swc: "name", SwcType: "Pat", ValueType: "node"},
	{NodeType: "VariableDeclarator", Field: "init", Babel: "init", Swc: "init", SwcType: "Option<Box<Expr>>", NeedsDeref: true, Optional: true, ValueType: "node", ReadConv: ConvNullableToOption, WriteConv: ConvOptionToNullable},

	// BinaryExpression.
	{NodeType: "BinaryExpression", Field: "operator", Babel: "operator", Swc: "op", SwcType: "BinaryOp", ValueType: "str", ReadConv: ConvEnumToTag},
	{NodeType: "BinaryExpression", Field: "left", Babel: "left", Swc: "left", SwcType: "Expr", NeedsDeref: true, ValueType: "node"},
	{NodeType: "BinaryExpression", Field: "right", Babel: "right", Swc: "right", SwcType: "Expr", NeedsDeref: true, ValueType: "node"},

	// UnaryExpression.
	{NodeType: "UnaryExpression", Field: "operator", Babel: "operator", Swc: "op", SwcType: "UnaryOp", ValueType: "str", ReadConv: ConvEnumToTag},
	{NodeType: "UnaryExpression", Field: "argument", Babel: "argument", Swc: "arg", SwcType: "Expr", NeedsDeref: true, ValueType: "node"},

	// AssignmentExpression.
	{NodeType: "AssignmentExpression", Field: "operator", Babel: "operator", Swc: "op", SwcType: "AssignOp", ValueType: "str", ReadConv: ConvEnumToTag},
	{NodeType: "AssignmentExpression", Field: "left", Babel: "left", Swc: "left", SwcType: "AssignTarget", ValueType: "node"},
	{NodeType: "AssignmentExpression", Field: "right", Babel: "right", Swc: "right", SwcType: "Expr", NeedsDeref: true, ValueType: "node"},

	// ExpressionStatement.
	{NodeType: "ExpressionStatement", Field: "expression", Babel: "expression", Swc: "expr", SwcType: "Expr", NeedsDeref: true, ValueType: "node"},

	// ReturnStatement.
	{NodeType: "ReturnStatement", Field: "argument", Babel: "argument", Swc: "arg", SwcType: "Option<Box<Expr>>", NeedsDeref: true, Optional: true, ValueType: "node", ReadConv: ConvNullableToOption, WriteConv: ConvOptionToNullable},

	// IfStatement.
	{NodeType: "IfStatement", Field: "test", Babel: "test", Swc: "test", SwcType: "Expr", NeedsDeref: true, ValueType: "node"},
	{NodeType: "IfStatement", Field: "consequent", Babel: "consequent", Swc: "cons", SwcType: "Stmt", NeedsDeref: true, ValueType: "node"},
	{NodeType: "IfStatement", Field: "alternate", Babel: "alternate", Swc: "alt", SwcType: "Option<Box<Stmt>>", NeedsDeref: true, Optional: true, ValueType: "node", ReadConv: ConvNullableToOption, WriteConv: ConvOptionToNullable},

	// BlockStatement.
	{NodeType: "BlockStatement", Field: "body", Babel: "body", Swc: "stmts", SwcType: "Vec<Stmt>", ValueType: "nodelist"},

	// Program.
	{NodeType: "Program", Field: "body", Babel: "body", Swc: "body", SwcType: "Vec<ModuleItem>", ValueType: "nodelist"},

	// StringLiteral.
	{NodeType: "StringLiteral", Field: "value", Babel: "value", Swc: "value", SwcType: "Atom", ValueType: "str", ReadConv: ConvHandleToString, WriteConv: ConvStringToHandle},

	// NumericLiteral.
	{NodeType: "NumericLiteral", Field: "value", Babel: "value", Swc: "value", SwcType: "f64", ValueType: "f64"},

	// BooleanLiteral.
	{NodeType: "BooleanLiteral", Field: "value", Babel: "value", Swc: "value", SwcType: "bool", ValueType: "bool"},

	// ArrayExpression.
	{NodeType: "ArrayExpression", Field: "elements", Babel: "elements", Swc: "elems", SwcType: "Vec<Option<ExprOrSpread>>", ValueType: "nodelist"},

	// ObjectExpression.
	{NodeType: "ObjectExpression", Field: "properties", Babel: "properties", Swc: "props", SwcType: "Vec<PropOrSpread>", ValueType: "nodelist"},

	// ThrowStatement.
	{NodeType: "ThrowStatement", Field: "argument", Babel: "argument", Swc: "arg", SwcType: "Expr", NeedsDeref: true, ValueType: "node"},

	// WhileStatement.
	{NodeType: "WhileStatement", Field: "test", Babel: "test", Swc: "test", SwcType: "Expr", NeedsDeref: true, ValueType: "node"},
	{NodeType: "WhileStatement", Field: "body", Babel: "body", Swc: "body", SwcType: "Stmt", NeedsDeref: true, ValueType: "node"},

	// NewExpression.
	{NodeType: "NewExpression", Field: "callee", Babel: "callee", Swc: "callee", SwcType: "Expr", NeedsDeref: true, ValueType: "node"},
	{NodeType: "NewExpression", Field: "arguments", Babel: "arguments", Swc: "args", SwcType: "Option<Vec<ExprOrSpread>>", Optional: true, ValueType: "nodelist"},

	// ArrowFunctionExpression.
	{NodeType: "ArrowFunctionExpression", Field: "params", Babel: "params", Swc: "params", SwcType: "Vec<Pat>", ValueType: "nodelist"},
	{NodeType: "ArrowFunctionExpression", Field: "async", Babel: "async", Swc: "is_async", SwcType: "bool", ValueType: "bool"},
}

type fieldKey struct {
	node  string
	field string
}

var fieldIndex = func() map[fieldKey]*FieldMapping {
	idx := make(map[fieldKey]*FieldMapping, len(fieldMappings))
	for i := range fieldMappings {
		m := &fieldMappings[i]
		idx[fieldKey{node: m.NodeType, field: m.Field}] = m
	}
	return idx
}()

// Field returns the mapping for one logical property of a node category.
func Field(nodeType, field string) (*FieldMapping, bool) {
	m, ok := fieldIndex[fieldKey{node: nodeType, field: field}]
	return m, ok
}

// FieldsOf returns all field mappings of a node category in declaration
// order.
func FieldsOf(nodeType string) []FieldMapping {
	var out []FieldMapping
	for _, m := range fieldMappings {
		if m.NodeType == nodeType {
			out = append(out, m)
		}
	}
	return out
}
