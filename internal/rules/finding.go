package rules

import (
	"eqlint/internal/classify"
	"eqlint/internal/diag"
	"eqlint/internal/source"
	"eqlint/internal/symbols"
)

// Rule identifies one of the three completeness rules.
type Rule uint8

const (
	// RuleCollectionStrategy: collection property without a strategy marker.
	RuleCollectionStrategy Rule = iota + 1
	// RuleComplexOptIn: complex-object property whose type does not opt in.
	RuleComplexOptIn
	// RuleElementOptIn: collection whose element type does not opt in.
	RuleElementOptIn
)

// Code returns the diagnostic code reported for the rule.
func (r Rule) Code() diag.Code {
	switch r {
	case RuleCollectionStrategy:
		return diag.EqCollectionNeedsStrategy
	case RuleComplexOptIn:
		return diag.EqComplexNeedsEquatable
	case RuleElementOptIn:
		return diag.EqElementNeedsEquatable
	}
	return diag.UnknownCode
}

func (r Rule) String() string {
	switch r {
	case RuleCollectionStrategy:
		return "A"
	case RuleComplexOptIn:
		return "B"
	case RuleElementOptIn:
		return "C"
	}
	return "?"
}

// Finding is one rule violation on one property.
type Finding struct {
	Rule     Rule
	Decl     symbols.DeclID
	Prop     symbols.PropID
	Type     symbols.TypeID // implicated type: property type (A, B) or element type (C)
	Category classify.Category
	Span     source.Span // the property's type reference
	Args     []string    // message arguments in code order
}

// Code is shorthand for f.Rule.Code().
func (f Finding) Code() diag.Code { return f.Rule.Code() }

// Message renders the code's message with the finding's arguments.
func (f Finding) Message() string { return f.Code().Format(f.Args...) }

// Diagnostic converts the finding with the code's default severity.
func (f Finding) Diagnostic() *diag.Diagnostic {
	return diag.NewFromCode(f.Code(), f.Span, f.Args...)
}
