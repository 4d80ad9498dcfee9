package builder

// Delay is a musical duration expressed relative to the bar length.
// It is one of:
//
//	nil or Fixed(0)   no delay
//	Fixed(d)          tactLength / d, so Fixed(4) is a quarter bar
//	Compound{a, b}    the sum of a and b, e.g. a dotted quarter is Compound{Fixed(4), Fixed(8)}
type Delay interface {
	resolve(tactLength float64) float64
}

// Fixed is a bar divisor.
type Fixed float64

func (f Fixed) resolve(tactLength float64) float64 {
	if f == 0 {
		return 0
	}
	return tactLength / float64(f)
}

// Compound sums its parts.
type Compound []Delay

func (c Compound) resolve(tactLength float64) float64 {
	var total float64
	for _, d := range c {
		total += resolve(d, tactLength)
	}
	return total
}

func resolve(d Delay, tactLength float64) float64 {
	if d == nil {
		return 0
	}
	return d.resolve(tactLength)
}

// Of builds a Compound from bar divisors: Of(4, 8) is a dotted quarter.
func Of(divisors ...float64) Compound {
	c := make(Compound, len(divisors))
	for i, d := range divisors {
		c[i] = Fixed(d)
	}
	return c
}
