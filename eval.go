package sqlitekit


// valueSeq is a lazy, possibly-infinite sequence of Values, one per output
// row. length is -1 for an infinite sequence (a bare literal, which has no
// natural row count of its own); any other value is the sequence's actual
// length. This is the mechanism behind spec.md §4.6's SELECT-list mode and
// §9's fix for the source's known non-termination defect: zipping two
// sequences always yields the shorter of the two non-infinite lengths, so
// `SELECT 1, 2 FROM t` (two infinite literal sequences) can never loop
// forever — its length is resolved by the caller falling back to the
// table's row count once no operand bounds it.
type valueSeq struct {
	length int
	at     func(i int) (Value, error)
}

func literalSeq(v Value) valueSeq {
	return valueSeq{length: -1, at: func(int) (Value, error) { return v, nil }}
}

func columnSeq(length int, at func(i int) (Value, error)) valueSeq {
	return valueSeq{length: length, at: at}
}

// zipSeq combines two sequences pairwise with op, taking the shorter of the
// two finite lengths (or staying infinite if both operands are infinite).
func zipSeq(a, b valueSeq, op func(x, y Value) (Value, error)) valueSeq {
	length := -1
	switch {
	case a.length < 0 && b.length < 0:
		length = -1
	case a.length < 0:
		length = b.length
	case b.length < 0:
		length = a.length
	default:
		length = a.length
		if b.length < length {
			length = b.length
		}
	}
	return valueSeq{
		length: length,
		at: func(i int) (Value, error) {
			av, err := a.at(i)
			if err != nil {
				return nil, err
			}
			bv, err := b.at(i)
			if err != nil {
				return nil, err
			}
			return op(av, bv)
		},
	}
}

// columnResolver looks up the value sequence for an identifier atom. WHERE
// mode (EvalWhere's single-row environment) and SELECT-list mode
// (a whole table) both implement it, which lets the same precedence-climbing
// walk serve both evaluation modes described in spec.md §4.6.
type columnResolver func(name string) (valueSeq, error)

func evalExprSeq(expr *OrExpr, resolve columnResolver) (valueSeq, error) {
	return evalOrSeq(expr, resolve)
}

func evalOrSeq(n *OrExpr, resolve columnResolver) (valueSeq, error) {
	seq, err := evalAndSeq(n.Left, resolve)
	if err != nil {
		return valueSeq{}, err
	}
	for _, o := range n.Ops {
		rhs, err := evalAndSeq(o.Right, resolve)
		if err != nil {
			return valueSeq{}, err
		}
		seq = zipSeq(seq, rhs, applyOr)
	}
	return seq, nil
}

func evalAndSeq(n *AndExpr, resolve columnResolver) (valueSeq, error) {
	seq, err := evalEqSeq(n.Left, resolve)
	if err != nil {
		return valueSeq{}, err
	}
	for _, o := range n.Ops {
		rhs, err := evalEqSeq(o.Right, resolve)
		if err != nil {
			return valueSeq{}, err
		}
		seq = zipSeq(seq, rhs, applyAnd)
	}
	return seq, nil
}

func evalEqSeq(n *EqExpr, resolve columnResolver) (valueSeq, error) {
	seq, err := evalCmpSeq(n.Left, resolve)
	if err != nil {
		return valueSeq{}, err
	}
	for _, o := range n.Ops {
		rhs, err := evalCmpSeq(o.Right, resolve)
		if err != nil {
			return valueSeq{}, err
		}
		op := o.Op
		seq = zipSeq(seq, rhs, func(a, b Value) (Value, error) { return applyCompare(op, a, b) })
	}
	return seq, nil
}

func evalCmpSeq(n *CmpExpr, resolve columnResolver) (valueSeq, error) {
	seq, err := evalAddSeq(n.Left, resolve)
	if err != nil {
		return valueSeq{}, err
	}
	for _, o := range n.Ops {
		rhs, err := evalAddSeq(o.Right, resolve)
		if err != nil {
			return valueSeq{}, err
		}
		op := o.Op
		seq = zipSeq(seq, rhs, func(a, b Value) (Value, error) { return applyCompare(op, a, b) })
	}
	return seq, nil
}

func evalAddSeq(n *AddExpr, resolve columnResolver) (valueSeq, error) {
	seq, err := evalMulSeq(n.Left, resolve)
	if err != nil {
		return valueSeq{}, err
	}
	for _, o := range n.Ops {
		rhs, err := evalMulSeq(o.Right, resolve)
		if err != nil {
			return valueSeq{}, err
		}
		op := o.Op
		seq = zipSeq(seq, rhs, func(a, b Value) (Value, error) { return applyArith(op, a, b) })
	}
	return seq, nil
}

func evalMulSeq(n *MulExpr, resolve columnResolver) (valueSeq, error) {
	seq, err := evalAtomSeq(n.Left, resolve)
	if err != nil {
		return valueSeq{}, err
	}
	for _, o := range n.Ops {
		rhs, err := evalAtomSeq(o.Right, resolve)
		if err != nil {
			return valueSeq{}, err
		}
		op := o.Op
		seq = zipSeq(seq, rhs, func(a, b Value) (Value, error) { return applyArith(op, a, b) })
	}
	return seq, nil
}

func evalAtomSeq(n *Atom, resolve columnResolver) (valueSeq, error) {
	switch {
	case n.Number != nil:
		return literalSeq(Integer(*n.Number)), nil
	case n.Text != nil:
		return literalSeq(Text(textLiteral(*n.Text))), nil
	case n.Ident != nil:
		return resolve(*n.Ident)
	case n.Sub != nil:
		return evalOrSeq(n.Sub, resolve)
	default:
		return valueSeq{}, newError("eval_atom", ErrSyntax, map[string]any{"reason": "empty atom"})
	}
}

// EvalWhere evaluates expr against a single row per spec.md §4.6's WHERE
// mode: identifiers resolve against the row's columns, literals are
// themselves, and the result is whatever the top-level operator produces
// (callers test truthiness with Truthy).
func EvalWhere(expr *OrExpr, row *Row) (Value, error) {
	resolve := func(name string) (valueSeq, error) {
		v, err := row.Column(name)
		if err != nil {
			return valueSeq{}, err
		}
		return columnSeq(1, func(int) (Value, error) { return v, nil }), nil
	}
	seq, err := evalExprSeq(expr, resolve)
	if err != nil {
		return nil, err
	}
	return seq.at(0)
}

// Truthy implements spec.md §4.6: a WHERE result is truthy iff Integer(1),
// falsy iff Integer(0); anything else is an evaluator error.
func Truthy(v Value) (bool, error) {
	i, ok := v.(Integer)
	if !ok {
		return false, newError("truthy", ErrType, map[string]any{"reason": "WHERE result is not an integer", "value": v})
	}
	switch i {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, newError("truthy", ErrType, map[string]any{"reason": "WHERE result is neither 0 nor 1", "value": int64(i)})
	}
}

func applyAnd(a, b Value) (Value, error) {
	at, err := Truthy(a)
	if err != nil {
		return nil, err
	}
	bt, err := Truthy(b)
	if err != nil {
		return nil, err
	}
	if at && bt {
		return Integer(1), nil
	}
	return Integer(0), nil
}

func applyOr(a, b Value) (Value, error) {
	at, err := Truthy(a)
	if err != nil {
		return nil, err
	}
	bt, err := Truthy(b)
	if err != nil {
		return nil, err
	}
	if at || bt {
		return Integer(1), nil
	}
	return Integer(0), nil
}

// applyCompare implements spec.md §4.6's comparison operators: numeric and
// text comparison follow compareValues' typed ordering; incomparable pairs
// (e.g. text vs integer) are unequal and unordered, never treated as equal
// the way the B-tree search relaxation in compareForSearch does.
func applyCompare(op string, a, b Value) (Value, error) {
	o := compareValues(a, b)
	truth := func(b bool) Value {
		if b {
			return Integer(1)
		}
		return Integer(0)
	}
	switch op {
	case "=", "==":
		return truth(o == orderEqual), nil
	case "<>", "!=":
		return truth(o != orderEqual), nil
	case "<":
		return truth(o == orderLess), nil
	case "<=":
		return truth(o == orderLess || o == orderEqual), nil
	case ">":
		return truth(o == orderGreater), nil
	case ">=":
		return truth(o == orderGreater || o == orderEqual), nil
	default:
		return nil, newError("apply_compare", ErrSyntax, map[string]any{"op": op})
	}
}

// applyArith implements spec.md §4.6's arithmetic operators, including the
// fix for the source's known `/` defect (it computed multiplication): `/`
// here is true truncating integer division with DivisionByZero on a zero
// integer divisor, and IEEE-754 division for reals.
func applyArith(op string, a, b Value) (Value, error) {
	switch op {
	case "+":
		if at, ok := a.(Text); ok {
			if bt, ok := b.(Text); ok {
				return Text(string(at) + string(bt)), nil
			}
			return nil, typeErr(op, a, b)
		}
		return numericArith(op, a, b)
	case "-", "*", "/":
		return numericArith(op, a, b)
	default:
		return nil, newError("apply_arith", ErrSyntax, map[string]any{"op": op})
	}
}

func numericArith(op string, a, b Value) (Value, error) {
	ai, aIsInt := a.(Integer)
	bi, bIsInt := b.(Integer)
	if aIsInt && bIsInt {
		x, y := int64(ai), int64(bi)
		switch op {
		case "+":
			return Integer(x + y), nil
		case "-":
			return Integer(x - y), nil
		case "*":
			return Integer(x * y), nil
		case "/":
			if y == 0 {
				return nil, newError("apply_arith", ErrDivisionByZero, map[string]any{"op": op})
			}
			return Integer(x / y), nil // Go truncates toward zero, matching spec.md's requirement
		}
	}

	af, aIsFloat := asReal(a)
	bf, bIsFloat := asReal(b)
	if aIsFloat && bIsFloat {
		switch op {
		case "+":
			return Real(af + bf), nil
		case "-":
			return Real(af - bf), nil
		case "*":
			return Real(af * bf), nil
		case "/":
			return Real(af / bf), nil // IEEE-754: division by zero yields +/-Inf or NaN
		}
	}
	return nil, typeErr(op, a, b)
}

func asReal(v Value) (float64, bool) {
	switch vv := v.(type) {
	case Real:
		return float64(vv), true
	case Integer:
		return float64(vv), true
	default:
		return 0, false
	}
}

func typeErr(op string, a, b Value) error {
	return newError("apply_arith", ErrType, map[string]any{"op": op, "left": a, "right": b})
}
