package rpn

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"stack_calculator/pkg/my_stack"
)

// step applies one RPN token to st and returns the resulting stack.
func step(st my_stack.Stack[float64], tok string) (my_stack.Stack[float64], error) {
	if !isOperator(tok) {
		n, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return st, errors.Wrapf(ErrInvalidExpression, "bad operand %q", tok)
		}
		return st.Push(n), nil
	}

	b, st, err := st.Pop()
	if err != nil {
		return st, fmt.Errorf("operator %q: %w: %w", tok, ErrInvalidExpression, err)
	}
	a, st, err := st.Pop()
	if err != nil {
		return st, fmt.Errorf("operator %q: %w: %w", tok, ErrInvalidExpression, err)
	}

	var r float64
	switch tok {
	case OPl:
		r = a + b
	case OMn:
		r = a - b
	case OMl:
		r = a * b
	case ODv:
		if b == 0 {
			return st, ErrDivisionByZero
		}
		r = a / b
	}
	return st.Push(r), nil
}

func result(st my_stack.Stack[float64]) (float64, error) {
	v, rest, err := st.Pop()
	if err != nil {
		return 0, errors.Wrap(ErrInvalidExpression, "nothing to evaluate")
	}
	if rest.Len() != 0 {
		return 0, errors.Wrapf(ErrInvalidExpression, "%d operands left unused", rest.Len())
	}
	return v, nil
}

// Evaluate computes an expression given in reverse Polish notation.
func Evaluate(tokens []string) (float64, error) {
	var st my_stack.Stack[float64]
	var err error
	for _, tok := range tokens {
		if st, err = step(st, tok); err != nil {
			return 0, err
		}
	}
	return result(st)
}

// Trace is Evaluate that also returns the operand stack after each token.
// On error the snapshots taken so far are returned.
func Trace(tokens []string) ([]my_stack.Stack[float64], float64, error) {
	snapshots := make([]my_stack.Stack[float64], 0, len(tokens))
	var st my_stack.Stack[float64]
	var err error
	for _, tok := range tokens {
		if st, err = step(st, tok); err != nil {
			return snapshots, 0, err
		}
		snapshots = append(snapshots, st)
	}
	v, err := result(st)
	return snapshots, v, err
}

// Calculate converts an infix expression to RPN and evaluates it.
func Calculate(expression string) (float64, error) {
	tokens, err := FromInfics(expression)
	if err != nil {
		return 0, err
	}
	return Evaluate(tokens)
}

// Result is the outcome of one expression passed to CalculateAll.
type Result struct {
	Expression string
	RPN        []string
	Value      float64
	Err        error
}

// CalculateAll evaluates expressions on at most workers goroutines.
// Results keep the input order; a bad expression only fails its own
// Result. The returned error is set when ctx ends first.
func CalculateAll(ctx context.Context, expressions []string, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(expressions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, expr := range expressions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := Result{Expression: expr}
			res.RPN, res.Err = FromInfics(expr)
			if res.Err == nil {
				res.Value, res.Err = Evaluate(res.RPN)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// FormatNumber prints f without trailing zeros.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
