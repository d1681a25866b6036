// Package mapping holds the static alignment catalog between logical
// host-node names, Babel/ESTree type names, and SWC Rust types. A construct
// is expressible in the plugin language only if it has a validated entry on
// both backends; the resolver rejects everything else up front, which is
// what lets the decorator and generators treat a missing entry as an
// internal defect rather than a user error.
package mapping

// NodeMapping aligns one logical host-node category across backends.
type NodeMapping struct {
	// Name is the logical, backend-neutral node name.
	Name string
	// Babel is the ESTree type string the dynamic backend keys visitors by.
	Babel string
	// BabelChecker is the @babel/types predicate for shape guards.
	BabelChecker string
	// Swc is the concrete Rust struct name.
	Swc string
	// SwcEnum and SwcVariant describe the wrapping sum type in the default
	// context. SwcEnum is empty for node types that are never enum-wrapped.
	SwcEnum    string
	SwcVariant string
	// SwcVisitor is the VisitMut trait method for this category.
	SwcVisitor string
}

var nodeMappings = []NodeMapping{
	// Declarations.
	{Name: "FunctionDeclaration", Babel: "FunctionDeclaration", BabelChecker: "isFunctionDeclaration", Swc: "FnDecl", SwcEnum: "Decl", SwcVariant: "Fn", SwcVisitor: "visit_mut_fn_decl"},
	{Name: "VariableDeclaration", Babel: "VariableDeclaration", BabelChecker: "isVariableDeclaration", Swc: "VarDecl", SwcEnum: "Decl", SwcVariant: "Var", SwcVisitor: "visit_mut_var_decl"},
	{Name: "VariableDeclarator", Babel: "VariableDeclarator", BabelChecker: "isVariableDeclarator", Swc: "VarDeclarator", SwcVisitor: "visit_mut_var_declarator"},
	{Name: "ClassDeclaration", Babel: "ClassDeclaration", BabelChecker: "isClassDeclaration", Swc: "ClassDecl", SwcEnum: "Decl", SwcVariant: "Class", SwcVisitor: "visit_mut_class_decl"},
	{Name: "ImportDeclaration", Babel: "ImportDeclaration", BabelChecker: "isImportDeclaration", Swc: "ImportDecl", SwcEnum: "ModuleDecl", SwcVariant: "Import", SwcVisitor: "visit_mut_import_decl"},
	{Name: "ExportNamedDeclaration", Babel: "ExportNamedDeclaration", BabelChecker: "isExportNamedDeclaration", Swc: "NamedExport", SwcEnum: "ModuleDecl", SwcVariant: "ExportNamed", SwcVisitor: "visit_mut_named_export"},
	{Name: "ExportDefaultDeclaration", Babel: "ExportDefaultDeclaration", BabelChecker: "isExportDefaultDeclaration", Swc: "ExportDefaultDecl", SwcEnum: "ModuleDecl", SwcVariant: "ExportDefaultDecl", SwcVisitor: "visit_mut_export_default_decl"},

	// Statements.
	{Name: "ExpressionStatement", Babel: "ExpressionStatement", BabelChecker: "isExpressionStatement", Swc: "ExprStmt", SwcEnum: "Stmt", SwcVariant: "Expr", SwcVisitor: "visit_mut_expr_stmt"},
	{Name: "BlockStatement", Babel: "BlockStatement", BabelChecker: "isBlockStatement", Swc: "BlockStmt", SwcEnum: "Stmt", SwcVariant: "Block", SwcVisitor: "visit_mut_block_stmt"},
	{Name: "ReturnStatement", Babel: "ReturnStatement", BabelChecker: "isReturnStatement", Swc: "ReturnStmt", SwcEnum: "Stmt", SwcVariant: "Return", SwcVisitor: "visit_mut_return_stmt"},
	{Name: "IfStatement", Babel: "IfStatement", BabelChecker: "isIfStatement", Swc: "IfStmt", SwcEnum: "Stmt", SwcVariant: "If", SwcVisitor: "visit_mut_if_stmt"},
	{Name: "ForStatement", Babel: "ForStatement", BabelChecker: "isForStatement", Swc: "ForStmt", SwcEnum: "Stmt", SwcVariant: "For", SwcVisitor: "visit_mut_for_stmt"},
	{Name: "ForInStatement", Babel: "ForInStatement", BabelChecker: "isForInStatement", Swc: "ForInStmt", SwcEnum: "Stmt", SwcVariant: "ForIn", SwcVisitor: "visit_mut_for_in_stmt"},
	{Name: "ForOfStatement", Babel: "ForOfStatement", BabelChecker: "isForOfStatement", Swc: "ForOfStmt", SwcEnum: "Stmt", SwcVariant: "ForOf", SwcVisitor: "visit_mut_for_of_stmt"},
	{Name: "WhileStatement", Babel: "WhileStatement", BabelChecker: "isWhileStatement", Swc: "WhileStmt", SwcEnum: "Stmt", SwcVariant: "While", SwcVisitor: "visit_mut_while_stmt"},
	{Name: "SwitchStatement", Babel: "SwitchStatement", BabelChecker: "isSwitchStatement", Swc: "SwitchStmt", SwcEnum: "Stmt", SwcVariant: "Switch", SwcVisitor: "visit_mut_switch_stmt"},
	{Name: "ThrowStatement", Babel: "ThrowStatement", BabelChecker: "isThrowStatement", Swc: "ThrowStmt", SwcEnum: "Stmt", SwcVariant: "Throw", SwcVisitor: "visit_mut_throw_stmt"},
	{Name: "TryStatement", Babel: "TryStatement", BabelChecker: "isTryStatement", Swc: "TryStmt", SwcEnum: "Stmt", SwcVariant: "Try", SwcVisitor: "visit_mut_try_stmt"},

	// Expressions.
	{Name: "Identifier", Babel: "Identifier", BabelChecker: "isIdentifier", Swc: "Ident", SwcEnum: "Expr", SwcVariant: "Ident", SwcVisitor: "visit_mut_ident"},
	{Name: "CallExpression", Babel: "CallExpression", BabelChecker: "isCallExpression", Swc: "CallExpr", SwcEnum: "Expr", SwcVariant: "Call", SwcVisitor: "visit_mut_call_expr"},
	{Name: "MemberExpression", Babel: "MemberExpression", BabelChecker: "isMemberExpression", Swc: "MemberExpr", SwcEnum: "Expr", SwcVariant: "Member", SwcVisitor: "visit_mut_member_expr"},
	{Name: "BinaryExpression", Babel: "BinaryExpression", BabelChecker: "isBinaryExpression", Swc: "BinExpr", SwcEnum: "Expr", SwcVariant: "Bin", SwcVisitor: "visit_mut_bin_expr"},
	{Name: "UnaryExpression", Babel: "UnaryExpression", BabelChecker: "isUnaryExpression", Swc: "UnaryExpr", SwcEnum: "Expr", SwcVariant: "Unary", SwcVisitor: "visit_mut_unary_expr"},
	{Name: "AssignmentExpression", Babel: "AssignmentExpression", BabelChecker: "isAssignmentExpression", Swc: "AssignExpr", SwcEnum: "Expr", SwcVariant: "Assign", SwcVisitor: "visit_mut_assign_expr"},
	{Name: "ConditionalExpression", Babel: "ConditionalExpression", BabelChecker: "isConditionalExpression", Swc: "CondExpr", SwcEnum: "Expr", SwcVariant: "Cond", SwcVisitor: "visit_mut_cond_expr"},
	{Name: "ArrayExpression", Babel: "ArrayExpression", BabelChecker: "isArrayExpression", Swc: "ArrayLit", SwcEnum: "Expr", SwcVariant: "Array", SwcVisitor: "visit_mut_array_lit"},
	{Name: "ObjectExpression", Babel: "ObjectExpression", BabelChecker: "isObjectExpression", Swc: "ObjectLit", SwcEnum: "Expr", SwcVariant: "Object", SwcVisitor: "visit_mut_object_lit"},
	{Name: "ArrowFunctionExpression", Babel: "ArrowFunctionExpression", BabelChecker: "isArrowFunctionExpression", Swc: "ArrowExpr", SwcEnum: "Expr", SwcVariant: "Arrow", SwcVisitor: "visit_mut_arrow_expr"},
	{Name: "FunctionExpression", Babel: "FunctionExpression", BabelChecker: "isFunctionExpression", Swc: "FnExpr", SwcEnum: "Expr", SwcVariant: "Fn", SwcVisitor: "visit_mut_fn_expr"},
	{Name: "NewExpression", Babel: "NewExpression", BabelChecker: "isNewExpression", Swc: "NewExpr", SwcEnum: "Expr", SwcVariant: "New", SwcVisitor: "visit_mut_new_expr"},
	{Name: "ThisExpression", Babel: "ThisExpression", BabelChecker: "isThisExpression", Swc: "ThisExpr", SwcEnum: "Expr", SwcVariant: "This", SwcVisitor: "visit_mut_this_expr"},
	{Name: "AwaitExpression", Babel: "AwaitExpression", BabelChecker: "isAwaitExpression", Swc: "AwaitExpr", SwcEnum: "Expr", SwcVariant: "Await", SwcVisitor: "visit_mut_await_expr"},

	// Literals.
	{Name: "StringLiteral", Babel: "StringLiteral", BabelChecker: "isStringLiteral", Swc: "Str", SwcEnum: "Lit", SwcVariant: "Str", SwcVisitor: "visit_mut_str"},
	{Name: "NumericLiteral", Babel: "NumericLiteral", BabelChecker: "isNumericLiteral", Swc: "Number", SwcEnum: "Lit", SwcVariant: "Num", SwcVisitor: "visit_mut_number"},
	{Name: "BooleanLiteral", Babel: "BooleanLiteral", BabelChecker: "isBooleanLiteral", Swc: "Bool", SwcEnum: "Lit", SwcVariant: "Bool", SwcVisitor: "visit_mut_bool"},
	{Name: "NullLiteral", Babel: "NullLiteral", BabelChecker: "isNullLiteral", Swc: "Null", SwcEnum: "Lit", SwcVariant: "Null", SwcVisitor: "visit_mut_null"},
	{Name: "TemplateLiteral", Babel: "TemplateLiteral", BabelChecker: "isTemplateLiteral", Swc: "Tpl", SwcEnum: "Expr", SwcVariant: "Tpl", SwcVisitor: "visit_mut_tpl"},
	{Name: "RegExpLiteral", Babel: "RegExpLiteral", BabelChecker: "isRegExpLiteral", Swc: "Regex", SwcEnum: "Lit", SwcVariant: "Regex", SwcVisitor: "visit_mut_regex"},

	// Patterns and program.
	{Name: "ObjectPattern", Babel: "ObjectPattern", BabelChecker: "isObjectPattern", Swc: "ObjectPat", SwcEnum: "Pat", SwcVariant: "Object", SwcVisitor: "visit_mut_object_pat"},
	{Name: "ArrayPattern", Babel: "ArrayPattern", BabelChecker: "isArrayPattern", Swc: "ArrayPat", SwcEnum: "Pat", SwcVariant: "Array", SwcVisitor: "visit_mut_array_pat"},
	{Name: "Program", Babel: "Program", BabelChecker: "isProgram", Swc: "Program", SwcVisitor: "visit_mut_program"},
}

var nodeIndex = func() map[string]*NodeMapping {
	idx := make(map[string]*NodeMapping, len(nodeMappings))
	for i := range nodeMappings {
		idx[nodeMappings[i].Name] = &nodeMappings[i]
	}
	return idx
}()

// Node returns the alignment entry for a logical node name.
func Node(name string) (*NodeMapping, bool) {
	m, ok := nodeIndex[name]
	return m, ok
}

// Nodes returns every catalog entry in declaration order. Read-only.
func Nodes() []NodeMapping {
	return nodeMappings
}

// Aligned reports whether the logical node name has a validated lowering on
// both backends.
func Aligned(name string) bool {
	_, ok := nodeIndex[name]
	return ok
}

// SwcPattern renders the refutable-binding pattern for the default context,
// e.g. "Expr::Call(call_expr)".
func (m *NodeMapping) SwcPattern(binding string) string {
	if m.SwcEnum == "" {
		return binding
	}
	return m.SwcEnum + "::" + m.SwcVariant + "(" + binding + ")"
}
