package recurrence

import (
	"fmt"

	"github.com/username/recur/pkg/dateutil"
)

// Predicate is anything that can say whether it occurs on a date.
// Implemented by *Recurrence and *Composite; every algebra method returns a
// new node wrapping the receiver and never evaluates anything eagerly.
type Predicate interface {
	OccursOn(date dateutil.Date) bool

	Union(other Predicate) Predicate
	Intersect(other Predicate) Predicate
	Difference(other Predicate) Predicate
	Complement() Predicate
}

// Op is the boolean operator of a Composite
type Op int

const (
	OpUnion Op = iota + 1
	OpIntersection
	OpDifference
	OpComplement
)

func (op Op) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpIntersection:
		return "intersect"
	case OpDifference:
		return "difference"
	case OpComplement:
		return "complement"
	default:
		return "unknown"
	}
}

// Composite combines one (complement) or two child predicates.
// Children may be shared between several trees; nothing mutates them.
type Composite struct {
	op    Op
	left  Predicate
	right Predicate
}

func newComposite(op Op, left, right Predicate) *Composite {
	return &Composite{op: op, left: left, right: right}
}

func (c *Composite) Op() Op { return c.op }

// Operands returns the children in order; complement has one.
func (c *Composite) Operands() []Predicate {
	if c.op == OpComplement {
		return []Predicate{c.left}
	}
	return []Predicate{c.left, c.right}
}

// OccursOn evaluates both children at date and combines the results.
func (c *Composite) OccursOn(date dateutil.Date) bool {
	a := c.left.OccursOn(date)
	if c.op == OpComplement {
		return !a
	}
	b := c.right.OccursOn(date)

	switch c.op {
	case OpUnion:
		return a || b
	case OpIntersection:
		return a && b
	case OpDifference:
		return a && !b
	default:
		return false
	}
}

func (c *Composite) String() string {
	if c.op == OpComplement {
		return fmt.Sprintf("complement(%v)", c.left)
	}
	return fmt.Sprintf("%s(%v, %v)", c.op, c.left, c.right)
}

func (c *Composite) Union(other Predicate) Predicate      { return newComposite(OpUnion, c, other) }
func (c *Composite) Intersect(other Predicate) Predicate  { return newComposite(OpIntersection, c, other) }
func (c *Composite) Difference(other Predicate) Predicate { return newComposite(OpDifference, c, other) }
func (c *Composite) Complement() Predicate                { return newComposite(OpComplement, c, nil) }

// UnionAll folds ps left to right with Union. It returns nil for no predicates.
func UnionAll(ps ...Predicate) Predicate {
	return fold(ps, Predicate.Union)
}

// IntersectAll folds ps left to right with Intersect. It returns nil for no predicates.
func IntersectAll(ps ...Predicate) Predicate {
	return fold(ps, Predicate.Intersect)
}

func fold(ps []Predicate, combine func(Predicate, Predicate) Predicate) Predicate {
	if len(ps) == 0 {
		return nil
	}
	acc := ps[0]
	for _, p := range ps[1:] {
		acc = combine(acc, p)
	}
	return acc
}

// Includes normalizes a date-like value and asks p whether it occurs on it.
func Includes(p Predicate, v any) (bool, error) {
	date, err := dateutil.Normalize(v)
	if err != nil {
		return false, err
	}
	return p.OccursOn(date), nil
}
