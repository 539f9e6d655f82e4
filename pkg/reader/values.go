package reader

import (
	"fmt"

	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// isExprDefined tells a real attribute from the zero-width placeholder the
// decoder leaves for an omitted optional one.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// evalExpr evaluates expr, returning ok=false for omitted or null values.
func evalExpr(expr hcl.Expression, evalCtx *hcl.EvalContext) (cty.Value, bool, hcl.Diagnostics) {
	if !isExprDefined(expr) {
		return cty.NilVal, false, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return cty.NilVal, false, diags
	}
	if val.IsNull() {
		return cty.NilVal, false, nil
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, false, hcl.Diagnostics{exprError(expr, "value must be known")}
	}
	return val, true, nil
}

func exprError(expr hcl.Expression, detail string) *hcl.Diagnostic {
	r := expr.Range()
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid value",
		Detail:   detail,
		Subject:  &r,
	}
}

// decodeDefines turns an object of string, bool or number values into
// defines, ordered by name.
func decodeDefines(expr hcl.Expression, evalCtx *hcl.EvalContext) ([]types.Define, hcl.Diagnostics) {
	val, ok, diags := evalExpr(expr, evalCtx)
	if !ok {
		return nil, diags
	}
	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, hcl.Diagnostics{exprError(expr, "defines must be an object")}
	}

	var defines []types.Define
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		name := k.AsString()
		if v.IsNull() {
			continue
		}
		switch v.Type() {
		case cty.Bool:
			mode := types.DefineUnset
			if v.True() {
				mode = types.DefineSet
			}
			defines = append(defines, types.Define{Name: name, Mode: mode})
		case cty.String:
			defines = append(defines, types.Define{Name: name, Value: v.AsString()})
		case cty.Number:
			defines = append(defines, types.Define{Name: name, Value: v.AsBigFloat().Text('f', -1)})
		default:
			return nil, hcl.Diagnostics{exprError(expr, fmt.Sprintf("define %s must be a string, bool or number", name))}
		}
	}
	return defines, nil
}

func decodeBool(expr hcl.Expression, evalCtx *hcl.EvalContext) (value, set bool, diags hcl.Diagnostics) {
	val, ok, diags := evalExpr(expr, evalCtx)
	if !ok {
		return false, false, diags
	}
	if val.Type() != cty.Bool {
		return false, false, hcl.Diagnostics{exprError(expr, "a bool is required")}
	}
	return val.True(), true, nil
}

func decodeInt(expr hcl.Expression, evalCtx *hcl.EvalContext) (value int, set bool, diags hcl.Diagnostics) {
	val, ok, diags := evalExpr(expr, evalCtx)
	if !ok {
		return 0, false, diags
	}
	if val.Type() != cty.Number {
		return 0, false, hcl.Diagnostics{exprError(expr, "a number is required")}
	}
	n, accuracy := val.AsBigFloat().Int64()
	if accuracy != 0 {
		return 0, false, hcl.Diagnostics{exprError(expr, "a whole number is required")}
	}
	return int(n), true, nil
}

// decodeSymbolsFile accepts true/false or an explicit file name.
func decodeSymbolsFile(expr hcl.Expression, evalCtx *hcl.EvalContext) (generate bool, name string, diags hcl.Diagnostics) {
	val, ok, diags := evalExpr(expr, evalCtx)
	if !ok {
		return false, "", diags
	}
	switch val.Type() {
	case cty.Bool:
		return val.True(), "", nil
	case cty.String:
		return false, val.AsString(), nil
	default:
		return false, "", hcl.Diagnostics{exprError(expr, "symbols_file must be a bool or a file name")}
	}
}

// evalContext exposes CONFIG, SRCDIR and RELSRCDIR to expressions.
func evalContext(cfg *types.Config, srcDir, relSrcDir string) *hcl.EvalContext {
	substs := cfg.Substs()
	attrs := make(map[string]cty.Value, len(substs))
	for k, v := range substs {
		attrs[k] = cty.StringVal(v)
	}
	config := cty.EmptyObjectVal
	if len(attrs) > 0 {
		config = cty.ObjectVal(attrs)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"CONFIG":    config,
			"SRCDIR":    cty.StringVal(srcDir),
			"RELSRCDIR": cty.StringVal(relSrcDir),
		},
	}
}
