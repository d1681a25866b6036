package mapping

// ContextVariant resolves the SWC enum/variant pair for matching a logical
// node type inside a specific pattern context. The same logical node is
// wrapped differently depending on where it sits: an Identifier is
// Expr::Ident as an expression, MemberProp::Ident as a member property, and
// Pat::Ident as a binding pattern. The default context is the node's own
// SwcEnum from the catalog.
//
// Returns the enum name, the variant, and the concrete struct bound by the
// pattern.
func ContextVariant(nodeType, context string) (enum, variant, bound string, ok bool) {
	switch context {
	case "MemberProp":
		switch nodeType {
		case "Identifier":
			return "MemberProp", "Ident", "IdentName", true
		case "ComputedPropName":
			return "MemberProp", "Computed", "ComputedPropName", true
		}
		return "", "", "", false

	case "Callee":
		switch nodeType {
		case "Super":
			return "Callee", "Super", "Super", true
		case "Import":
			return "Callee", "Import", "Import", true
		}
		// Every expression callee is Callee::Expr(Box<Expr>); the caller
		// chains a second step in Expr context.
		return "Callee", "Expr", "Expr", true

	case "Pat":
		switch nodeType {
		case "Identifier":
			return "Pat", "Ident", "BindingIdent", true
		case "ArrayPattern":
			return "Pat", "Array", "ArrayPat", true
		case "ObjectPattern":
			return "Pat", "Object", "ObjectPat", true
		case "RestElement":
			return "Pat", "Rest", "RestPat", true
		case "AssignmentPattern":
			return "Pat", "Assign", "AssignPat", true
		}
		return "", "", "", false

	case "Lit":
		switch nodeType {
		case "StringLiteral":
			return "Lit", "Str", "Str", true
		case "NumericLiteral":
			return "Lit", "Num", "Number", true
		case "BooleanLiteral":
			return "Lit", "Bool", "Bool", true
		case "NullLiteral":
			return "Lit", "Null", "Null", true
		case "RegExpLiteral":
			return "Lit", "Regex", "Regex", true
		}
		return "", "", "", false
	}

	m, found := Node(nodeType)
	if !found {
		return "", "", "", false
	}
	if m.SwcEnum == "" {
		return "", "", m.Swc, true
	}
	return m.SwcEnum, m.SwcVariant, m.Swc, true
}
