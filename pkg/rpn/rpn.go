package rpn

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"stack_calculator/pkg/my_stack"
)

// Operators understood by FromInfics and Evaluate.
const (
	OPl = "+"
	OMn = "-"
	OMl = "*"
	ODv = "/"
)

var (
	ErrInvalidExpression = errors.New("invalid expression")
	ErrDivisionByZero    = errors.New("division by zero")
)

// kind of the last element read from an infix expression
type kind int

const (
	kindNone kind = iota
	kindNumber
	kindOperator
	kindOpen
	kindClose
)

// an operand or an opening bracket may follow these
func operandAllowed(last kind) bool {
	return last == kindNone || last == kindOperator || last == kindOpen
}

func priority(op rune) int {
	switch op {
	case '+', '-':
		return 1
	case '*', '/':
		return 2
	}
	return 0
}

func isOperator(tok string) bool {
	return tok == OPl || tok == OMn || tok == OMl || tok == ODv
}

/*
FromInfics converts an infix arithmetic expression into reverse Polish
notation. Numbers are non-negative decimals ("3.14"), operators are
+ - * / and round brackets group. Spaces are ignored between elements.

https://en.wikipedia.org/wiki/Shunting_yard_algorithm
*/
func FromInfics(expression string) ([]string, error) {
	out := make([]string, 0) // the expression in RPN
	item := ""               // digits of the number being read
	last := kindNone

	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, errors.Wrap(ErrInvalidExpression, "empty expression")
	}

	// moves a finished number into the output
	flush := func() error {
		if item == "" {
			return nil
		}
		if _, err := strconv.ParseFloat(item, 64); err != nil {
			return errors.Wrapf(ErrInvalidExpression, "bad number %q", item)
		}
		out = append(out, item)
		item = ""
		last = kindNumber
		return nil
	}

	stck := my_stack.NewMyStack[rune]()
	for pos, c := range expression {
		if (c >= '0' && c <= '9') || c == '.' {
			if item == "" && !operandAllowed(last) {
				return nil, errors.Wrapf(ErrInvalidExpression, "unexpected number at %d", pos)
			}
			item += string(c)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}

		switch c {
		case ' ', '\t':
		case '+', '-', '*', '/':
			if last != kindNumber && last != kindClose {
				return nil, errors.Wrapf(ErrInvalidExpression, "unexpected operator %q at %d", c, pos)
			}
			// pop operators of greater or equal priority down to a bracket
			for stck.Size() > 0 {
				top, _ := stck.Peek()
				if top == '(' || priority(top) < priority(c) {
					break
				}
				_, _ = stck.Pop()
				out = append(out, string(top))
			}
			stck.Push(c)
			last = kindOperator
		case '(':
			if !operandAllowed(last) {
				return nil, errors.Wrapf(ErrInvalidExpression, "unexpected '(' at %d", pos)
			}
			stck.Push(c)
			last = kindOpen
		case ')':
			if last != kindNumber && last != kindClose {
				return nil, errors.Wrapf(ErrInvalidExpression, "unexpected ')' at %d", pos)
			}
			for {
				top, err := stck.Pop()
				if err != nil {
					return nil, errors.Wrap(ErrInvalidExpression, "unbalanced brackets")
				}
				if top == '(' {
					break
				}
				out = append(out, string(top))
			}
			last = kindClose
		default:
			return nil, errors.Wrapf(ErrInvalidExpression, "unexpected symbol %q at %d", c, pos)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if last != kindNumber && last != kindClose {
		return nil, errors.Wrap(ErrInvalidExpression, "expression ends with an operator")
	}

	// only operators may be left on the stack
	for stck.Size() > 0 {
		top, _ := stck.Pop()
		if top == '(' {
			return nil, errors.Wrap(ErrInvalidExpression, "unbalanced brackets")
		}
		out = append(out, string(top))
	}
	return out, nil
}
