package action

import "fmt"

const (
	rootContext = "context"
	rootInput   = "input"
)

// Evaluator is the engine-facing contract. The engine passes a working copy
// of the context; implementations mutate and return it (or a replacement).
// On error the engine discards the copy, so partial mutation is harmless.
type Evaluator interface {
	Evaluate(src string, context map[string]any, input any) (map[string]any, error)
}

// DSL is the default Evaluator: the restricted statement dialect described
// in the package documentation.
type DSL struct{}

// New returns the default DSL evaluator.
func New() *DSL {
	return &DSL{}
}

type env struct {
	context map[string]any
	input   any
}

// Evaluate parses and runs src against the given bindings.
// The returned map is the (mutated) context argument.
func (d *DSL) Evaluate(src string, context map[string]any, input any) (map[string]any, error) {
	stmts, perr := parse(src)
	if perr != nil {
		return nil, perr
	}

	e := &env{context: context, input: input}
	for _, st := range stmts {
		val, err := st.expr.eval(e)
		if err != nil {
			return nil, err
		}
		if err := e.assign(st.target, st.op, val); err != nil {
			return nil, err
		}
	}
	return context, nil
}

// assign writes val into the target path, applying the compound operator
// against the current value first. Intermediate maps are created on demand.
func (e *env) assign(target *pathNode, op string, val any) error {
	parent := e.context
	for _, seg := range target.parts[1 : len(target.parts)-1] {
		child, ok := parent[seg]
		if !ok || child == nil {
			next := make(map[string]any)
			parent[seg] = next
			parent = next
			continue
		}
		m, ok := child.(map[string]any)
		if !ok {
			return errAt(target.pos, "path %s traverses non-object value", pathString(target.parts))
		}
		parent = m
	}

	leaf := target.parts[len(target.parts)-1]
	if op == "=" {
		parent[leaf] = val
		return nil
	}

	current, ok := parent[leaf]
	if !ok {
		return errAt(target.pos, "%s is not set, cannot apply %q", pathString(target.parts), op)
	}
	updated, err := applyBinary(op[:1], current, val, target.pos)
	if err != nil {
		return err
	}
	parent[leaf] = updated
	return nil
}

func (n *litNode) eval(*env) (any, error) {
	return n.val, nil
}

func (n *pathNode) eval(e *env) (any, error) {
	var current any
	switch n.parts[0] {
	case rootContext:
		current = e.context
	case rootInput:
		current = e.input
	default:
		return nil, errAt(n.pos, "unknown binding %q (expected %q or %q)", n.parts[0], rootContext, rootInput)
	}

	for _, seg := range n.parts[1:] {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, errAt(n.pos, "path %s traverses non-object value", pathString(n.parts))
		}
		current = m[seg]
	}
	return current, nil
}

func (n *negNode) eval(e *env) (any, error) {
	v, err := n.operand.eval(e)
	if err != nil {
		return nil, err
	}
	f, ok := toNumber(v)
	if !ok {
		return nil, errAt(n.pos, "cannot negate non-numeric value %v", v)
	}
	return -f, nil
}

func (n *binNode) eval(e *env) (any, error) {
	left, err := n.left.eval(e)
	if err != nil {
		return nil, err
	}
	right, err := n.right.eval(e)
	if err != nil {
		return nil, err
	}
	return applyBinary(n.op, left, right, n.pos)
}

func applyBinary(op string, left, right any, pos int) (any, error) {
	if op == "+" {
		if ls, ok := left.(string); ok {
			return ls + stringify(right), nil
		}
		if rs, ok := right.(string); ok {
			return stringify(left) + rs, nil
		}
	}

	lf, lok := toNumber(left)
	rf, rok := toNumber(right)
	if !lok || !rok {
		return nil, errAt(pos, "operator %q requires numeric operands, got %v and %v", op, left, right)
	}

	switch op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		if rf == 0 {
			return nil, errAt(pos, "division by zero")
		}
		return lf / rf, nil
	default:
		return nil, errAt(pos, "unsupported operator %q", op)
	}
}

// toNumber coerces the numeric types that JSON and YAML decoding produce.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := toNumber(v); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}

func pathString(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "." + p
	}
	return out
}
