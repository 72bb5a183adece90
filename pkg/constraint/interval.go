package constraint

import "fmt"

// negInf and posInf stand in for unbounded ends of an interval. Where-clause
// params are small counters and indices in practice, not field elements, so
// saturating int64 sentinels are enough; pkg/corset's Interval uses math/big
// because it tracks arbitrary-width field values, a concern this solver does
// not share.
const (
	negInf = int64(-1) << 62
	posInf = int64(1) << 62
)

// interval is a closed, possibly-unbounded range [min, max] approximating
// the set of values a param may hold while a where clause is being checked.
type interval struct{ min, max int64 }

func unbounded() interval { return interval{negInf, posInf} }

func point(v int64) interval { return interval{v, v} }

func (iv interval) empty() bool { return iv.min > iv.max }

func (iv interval) String() string {
	lo, hi := "-inf", "+inf"
	if iv.min != negInf {
		lo = fmt.Sprintf("%d", iv.min)
	}

	if iv.max != posInf {
		hi = fmt.Sprintf("%d", iv.max)
	}

	return fmt.Sprintf("[%s, %s]", lo, hi)
}

// intersect narrows iv to the overlap with other, returning the empty
// interval if the two do not overlap.
func (iv interval) intersect(other interval) interval {
	out := interval{min: max64(iv.min, other.min), max: min64(iv.max, other.max)}
	return out
}

// union widens iv to cover both iv and other; used when merging the domain
// reached along alternative Or branches.
func (iv interval) union(other interval) interval {
	if iv.empty() {
		return other
	}

	if other.empty() {
		return iv
	}

	return interval{min: min64(iv.min, other.min), max: max64(iv.max, other.max)}
}

// narrow applies a single `var OP value` comparison to iv, returning the
// tightest interval consistent with it. `!=` cannot be represented exactly
// as one interval, so it only narrows when iv is already a single point
// equal to value.
func (iv interval) narrow(op string, value int64) interval {
	switch op {
	case "<":
		return iv.intersect(interval{negInf, value - 1})
	case "<=":
		return iv.intersect(interval{negInf, value})
	case ">":
		return iv.intersect(interval{value + 1, posInf})
	case ">=":
		return iv.intersect(interval{value, posInf})
	case "==":
		return iv.intersect(point(value))
	case "!=":
		if iv.min == iv.max && iv.min == value {
			return interval{1, 0} // empty
		}

		return iv
	}

	return iv
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}
