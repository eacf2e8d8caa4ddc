package gridfile

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/experimentor/internal/grid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// hclGridFile is the top-level structure of an HCL grid file:
//
//	set "model" {
//	  small = { hidden = 128 }
//	  large = { hidden = 512 }
//	}
//
//	set "dataset" {
//	  cifar = "data/cifar"
//	  mnist = "data/mnist"
//	}
type hclGridFile struct {
	Sets []*hclSet `hcl:"set,block"`
}

// hclSet is one parameter set. Its attributes are decoded by hand so that
// their source order can be recovered.
type hclSet struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// decodeHCL parses an HCL grid file. Attribute order inside a set, and item
// order inside object expressions, follow the source text.
func decodeHCL(filename string, src []byte) (grid.Grid, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclGridFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	g := make(grid.Grid, 0, len(parsed.Sets))
	for i, set := range parsed.Sets {
		params, err := decodeHCLSet(filename, set, i)
		if err != nil {
			return nil, err
		}
		g = append(g, params)
	}
	return g, nil
}

func decodeHCLSet(filename string, set *hclSet, setIndex int) (grid.Params, error) {
	attrs, diags := set.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("error parsing set %q in file %s: %w", set.Name, filename, diags)
	}

	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	params := make(grid.Params, 0, len(ordered))
	for _, attr := range ordered {
		value, err := decodeHCLExpr(filename, attr.Expr, setIndex)
		if err != nil {
			return nil, err
		}
		params = append(params, grid.Param{Key: attr.Name, Value: value})
	}
	return params, nil
}

// decodeHCLExpr evaluates a literal expression. Object constructors are walked
// item by item so that option groups keep their written order.
func decodeHCLExpr(filename string, expr hcl.Expression, setIndex int) (any, error) {
	if obj, ok := expr.(*hclsyntax.ObjectConsExpr); ok {
		params := make(grid.Params, 0, len(obj.Items))
		for _, item := range obj.Items {
			keyVal, diags := item.KeyExpr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to evaluate key in %s: %w", filename, diags)
			}
			keyVal, err := convert.Convert(keyVal, cty.String)
			if err != nil || keyVal.IsNull() || !keyVal.IsKnown() {
				return nil, fmt.Errorf("%s: option keys must be strings", item.KeyExpr.Range())
			}
			key := keyVal.AsString()
			start := item.KeyExpr.Range().Start
			if err := checkUniqueKey(params, key, filename, setIndex, fmt.Sprintf("%d:%d", start.Line, start.Column)); err != nil {
				return nil, err
			}

			value, err := decodeHCLExpr(filename, item.ValueExpr, setIndex)
			if err != nil {
				return nil, err
			}
			params = append(params, grid.Param{Key: key, Value: value})
		}
		return params, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate expression in %s: %w", filename, diags)
	}
	out, err := ctyValueToParam(val)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", expr.Range(), err)
	}
	return out, nil
}

// ctyValueToParam converts a cty.Value into a grid parameter value.
func ctyValueToParam(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			bf := val.AsBigFloat()
			if bf.IsInt() {
				if i, acc := bf.Int64(); acc == big.Exact {
					return i, nil
				}
			}
			f, _ := bf.Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		// cty iterates object attributes in lexical order; source order is only
		// available for literal object constructors.
		params := make(grid.Params, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			inner, err := ctyValueToParam(v)
			if err != nil {
				return nil, err
			}
			params = append(params, grid.Param{Key: k.AsString(), Value: inner})
		}
		return params, nil
	}
	return nil, fmt.Errorf("parameter values must be scalars or objects, got %s", ty.FriendlyName())
}
