// Package decorate turns a checked program into a DecoratedProgram: the
// immutable artefact both generators read. Every host-tree access gets a
// per-backend LoweringInfo, structural matches are decomposed into ordered
// guard steps, and clone requirements are computed once here so the
// generators never reason about ownership themselves.
package decorate

import (
	"fmt"

	"reluxc/internal/ast"
	"reluxc/internal/mapping"
	"reluxc/internal/sema"
	"reluxc/internal/source"
	"reluxc/internal/types"
)

// Backend selects one of the two code generators.
type Backend uint8

const (
	// BackendDynamic targets the GC host: ownership erased.
	BackendDynamic Backend = iota
	// BackendStatic targets the ownership-checked host.
	BackendStatic
)

func (b Backend) String() string {
	if b == BackendDynamic {
		return "babel"
	}
	return "swc"
}

// AccessKind is one step kind on a lowered field path.
type AccessKind uint8

const (
	AccessField AccessKind = iota
	AccessDeref
	AccessCall
)

// FieldStep is one step of a lowered field path.
type FieldStep struct {
	Name   string
	Access AccessKind
}

// LoweringInfo carries everything one backend needs to materialize a single
// host-tree access. Absence of a LoweringInfo at generation time is an
// internal defect: alignment was validated before decoration.
type LoweringInfo struct {
	// HostType is the physical node type name on this backend.
	HostType string
	// VariantTag is the wrapping enum variant on the static backend,
	// rendered as Enum::Variant. Empty on the dynamic backend.
	VariantTag string
	FieldPath  []FieldStep
	// RequiresClone marks a consuming use whose value is read again later.
	RequiresClone bool
	Conversion    mapping.Conversion
}

// Lowering pairs the two backend renditions of one access.
type Lowering struct {
	Dynamic LoweringInfo
	Static  LoweringInfo
}

// VisitorPlan is one traversal hook ready for emission.
type VisitorPlan struct {
	Item      ast.ItemID
	NodeType  string
	Mutates   bool
	Param     string
	Babel     string
	Checker   string
	Swc       string
	SwcMethod string
}

// DecoratedProgram is the read-only hand-off to the generators.
type DecoratedProgram struct {
	Sem      *sema.Result
	Visitors []VisitorPlan
	// Members maps host-node member accesses to their lowerings. The
	// conversion recorded is the read conversion for reads and the write
	// conversion for assignment targets.
	Members map[ast.ExprID]Lowering
	// Tests maps matches! expressions to their type-test lowerings.
	Tests map[ast.ExprID]Lowering
	// Arms maps match statements with structural patterns to their
	// decomposed guard plans, one per arm in source order.
	Arms map[ast.StmtID][]ArmPlan
	// Clones marks expressions the static backend must clone.
	Clones map[ast.ExprID]bool
}

// InternalLoweringError reports a catalog miss after alignment validation:
// a compiler defect, never a user diagnostic.
type InternalLoweringError struct {
	NodeKind string
	Backend  Backend
	Span     source.Span
}

func (e *InternalLoweringError) Error() string {
	return fmt.Sprintf("internal: no %s lowering for %s at %s", e.Backend, e.NodeKind, e.Span)
}

type decorator struct {
	sem      *sema.Result
	builder  *ast.Builder
	out      *DecoratedProgram
	fnOwners map[string][]types.Ownership
	err      error
}

// Run decorates a checked program. sem must come from a pass whose
// diagnostic bag holds no errors; Run itself emits no user diagnostics.
func Run(sem *sema.Result) (*DecoratedProgram, error) {
	out := &DecoratedProgram{
		Sem:     sem,
		Members: make(map[ast.ExprID]Lowering),
		Tests:   make(map[ast.ExprID]Lowering),
		Arms:    make(map[ast.StmtID][]ArmPlan),
		Clones:  make(map[ast.ExprID]bool),
	}
	if sem == nil || sem.Program == nil || sem.Program.Builder == nil {
		return out, nil
	}
	d := &decorator{sem: sem, builder: sem.Program.Builder, out: out}

	for _, v := range sem.Visitors {
		plan, err := d.visitorPlan(v)
		if err != nil {
			return nil, err
		}
		out.Visitors = append(out.Visitors, plan)
	}

	container, ok := d.builder.Items.Container(sem.Program.Decl)
	if !ok {
		return out, nil
	}
	for _, itemID := range container.Body {
		item := d.builder.Items.Get(itemID)
		if item == nil || item.Kind != ast.ItemFn {
			continue
		}
		data, _ := d.builder.Items.Fn(itemID)
		d.walkStmt(data.Body)
		if d.err != nil {
			return nil, d.err
		}
		d.analyzeClones(itemID, data)
	}
	return out, nil
}

func (d *decorator) visitorPlan(v sema.VisitorInfo) (VisitorPlan, error) {
	nm, ok := mapping.Node(v.NodeType)
	if !ok {
		item := d.builder.Items.Get(v.Item)
		return VisitorPlan{}, &InternalLoweringError{NodeKind: v.NodeType, Backend: BackendStatic, Span: item.Span}
	}
	plan := VisitorPlan{
		Item:      v.Item,
		NodeType:  v.NodeType,
		Mutates:   v.Mutates,
		Babel:     nm.Babel,
		Checker:   nm.BabelChecker,
		Swc:       nm.Swc,
		SwcMethod: nm.SwcVisitor,
	}
	if data, ok := d.builder.Items.Fn(v.Item); ok && len(data.Params) > 0 {
		plan.Param = data.Params[0].Name
	}
	return plan, nil
}

func (d *decorator) walkStmt(id ast.StmtID) {
	if d.err != nil {
		return
	}
	stmt := d.builder.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		data, _ := d.builder.Stmts.Block(id)
		for _, s := range data.Stmts {
			d.walkStmt(s)
		}
	case ast.StmtLet:
		data, _ := d.builder.Stmts.Let(id)
		d.walkExpr(data.Init, false)
	case ast.StmtExpr:
		data, _ := d.builder.Stmts.Expr(id)
		d.walkExpr(data.Expr, false)
	case ast.StmtIf:
		data, _ := d.builder.Stmts.If(id)
		d.walkExpr(data.Cond, false)
		d.walkStmt(data.Then)
		d.walkStmt(data.Else)
	case ast.StmtMatch:
		d.decorateMatch(id)
	case ast.StmtFor:
		data, _ := d.builder.Stmts.For(id)
		d.walkExpr(data.Iter, false)
		d.walkStmt(data.Body)
	case ast.StmtWhile:
		data, _ := d.builder.Stmts.While(id)
		d.walkExpr(data.Cond, false)
		d.walkStmt(data.Body)
	case ast.StmtReturn:
		data, _ := d.builder.Stmts.Return(id)
		d.walkExpr(data.Value, false)
	}
}

// walkExpr attaches member and test lowerings. write marks an assignment
// target, selecting the write conversion.
func (d *decorator) walkExpr(id ast.ExprID, write bool) {
	if d.err != nil || !id.IsValid() {
		return
	}
	expr := d.builder.Exprs.Get(id)
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ast.ExprBinary:
		data, _ := d.builder.Exprs.Binary(id)
		d.walkExpr(data.Left, false)
		d.walkExpr(data.Right, false)
	case ast.ExprUnary:
		data, _ := d.builder.Exprs.Unary(id)
		d.walkExpr(data.Operand, false)
	case ast.ExprCall:
		data, _ := d.builder.Exprs.Call(id)
		// A method callee's receiver is walked; the method name itself is
		// not a host field access.
		if member, ok := d.builder.Exprs.Member(data.Callee); ok {
			d.walkExpr(member.Object, false)
		} else {
			d.walkExpr(data.Callee, false)
		}
		for _, arg := range data.Args {
			d.walkExpr(arg, false)
		}
	case ast.ExprMember:
		d.decorateMember(id, write)
	case ast.ExprIndex:
		data, _ := d.builder.Exprs.Index(id)
		d.walkExpr(data.Object, write)
		d.walkExpr(data.Index, false)
	case ast.ExprStructInit:
		data, _ := d.builder.Exprs.StructInit(id)
		for _, f := range data.Fields {
			d.walkExpr(f.Value, false)
		}
	case ast.ExprListInit:
		data, _ := d.builder.Exprs.ListInit(id)
		for _, e := range data.Elems {
			d.walkExpr(e, false)
		}
	case ast.ExprMapInit:
		data, _ := d.builder.Exprs.MapInit(id)
		for _, entry := range data.Entries {
			d.walkExpr(entry.Key, false)
			d.walkExpr(entry.Value, false)
		}
	case ast.ExprSetInit:
		data, _ := d.builder.Exprs.SetInit(id)
		for _, e := range data.Elems {
			d.walkExpr(e, false)
		}
	case ast.ExprAssign:
		data, _ := d.builder.Exprs.Assign(id)
		d.walkExpr(data.Target, true)
		d.walkExpr(data.Value, false)
	case ast.ExprMatches:
		d.decorateTest(id)
	}
}

// decorateMember lowers one host-node field access on both backends.
func (d *decorator) decorateMember(id ast.ExprID, write bool) {
	data, _ := d.builder.Exprs.Member(id)
	d.walkExpr(data.Object, false)

	objType := d.sem.ExprTypes[data.Object]
	t, ok := d.sem.Types.Lookup(objType)
	if !ok || t.Kind != types.KindHostNode {
		return
	}
	nodeType, _ := d.sem.Types.HostNodeName(objType)
	expr := d.builder.Exprs.Get(id)

	nm, okNode := mapping.Node(nodeType)
	fm, okField := mapping.Field(nodeType, data.Property)
	if !okNode || !okField {
		d.err = &InternalLoweringError{NodeKind: nodeType + "." + data.Property, Backend: BackendStatic, Span: expr.Span}
		return
	}
	conv := fm.ReadConv
	if write {
		conv = fm.WriteConv
	}
	d.out.Members[id] = Lowering{
		Dynamic: LoweringInfo{
			HostType:  nm.Babel,
			FieldPath: fieldPath(fm.Babel, false),
		},
		Static: LoweringInfo{
			HostType:   nm.Swc,
			FieldPath:  fieldPath(fm.Swc, fm.NeedsDeref),
			Conversion: conv,
		},
	}
}

// decorateTest lowers a matches! shape test.
func (d *decorator) decorateTest(id ast.ExprID) {
	data, _ := d.builder.Exprs.Matches(id)
	d.walkExpr(data.Subject, false)

	expr := d.builder.Exprs.Get(id)
	nm, ok := mapping.Node(data.NodeType)
	if !ok {
		d.err = &InternalLoweringError{NodeKind: data.NodeType, Backend: BackendStatic, Span: expr.Span}
		return
	}
	static := LoweringInfo{HostType: nm.Swc}
	if nm.SwcEnum != "" {
		static.VariantTag = nm.SwcEnum + "::" + nm.SwcVariant
	}
	d.out.Tests[id] = Lowering{
		Dynamic: LoweringInfo{HostType: nm.Babel, FieldPath: []FieldStep{{Name: nm.BabelChecker, Access: AccessCall}}},
		Static:  static,
	}
}

// fieldPath splits a catalog path into steps. needsDeref prepends a deref
// step for the static backend.
func fieldPath(path string, needsDeref bool) []FieldStep {
	var steps []FieldStep
	if needsDeref {
		steps = append(steps, FieldStep{Access: AccessDeref})
	}
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			if i > start {
				steps = append(steps, FieldStep{Name: path[start:i], Access: AccessField})
			}
			start = i + 1
		}
	}
	return steps
}
