package diag

import (
	"fmt"
)

// Code identifies a diagnostic category. Semantic codes live in the 3000
// range; the 9000 range is reserved for internal compiler defects so tooling
// can always tell them apart from user mistakes.
type Code uint16

const (
	UnknownCode Code = 0

	// Semantic analysis.
	SemaInfo                  Code = 3000
	SemaUndefinedSymbol       Code = 3001
	SemaDuplicateSymbol       Code = 3002
	SemaTypeMismatch          Code = 3003
	SemaUnassignableContainer Code = 3004
	SemaIllegalMutation       Code = 3005
	SemaUnsupportedConstruct  Code = 3006
	SemaUnknownField          Code = 3007
	SemaUnknownVariant        Code = 3008
	SemaArityMismatch         Code = 3009
	SemaMissingReturn         Code = 3010
	SemaResidualUnknown       Code = 3011
	SemaInvalidCondition      Code = 3012
	SemaNotCallable           Code = 3013
	SemaDuplicateVisitor      Code = 3014

	// Internal defects (never user-attributable).
	InternalLowering Code = 9001
)

func (c Code) String() string {
	switch c {
	case SemaInfo:
		return "SEMA_INFO"
	case SemaUndefinedSymbol:
		return "UNDEFINED_SYMBOL"
	case SemaDuplicateSymbol:
		return "DUPLICATE_SYMBOL"
	case SemaTypeMismatch:
		return "TYPE_MISMATCH"
	case SemaUnassignableContainer:
		return "UNASSIGNABLE_CONTAINER"
	case SemaIllegalMutation:
		return "ILLEGAL_MUTATION_THROUGH_IMMUTABLE_BINDING"
	case SemaUnsupportedConstruct:
		return "UNSUPPORTED_CONSTRUCT"
	case SemaUnknownField:
		return "UNKNOWN_FIELD"
	case SemaUnknownVariant:
		return "UNKNOWN_VARIANT"
	case SemaArityMismatch:
		return "ARITY_MISMATCH"
	case SemaMissingReturn:
		return "MISSING_RETURN"
	case SemaResidualUnknown:
		return "RESIDUAL_UNKNOWN_TYPE"
	case SemaInvalidCondition:
		return "INVALID_CONDITION"
	case SemaNotCallable:
		return "NOT_CALLABLE"
	case SemaDuplicateVisitor:
		return "DUPLICATE_VISITOR"
	case InternalLowering:
		return "INTERNAL_LOWERING"
	case UnknownCode:
		return "UNKNOWN"
	}
	return fmt.Sprintf("CODE_%04d", uint16(c))
}

// IsInternal reports whether the code marks a compiler defect rather than a
// user error.
func (c Code) IsInternal() bool {
	return c >= 9000
}
