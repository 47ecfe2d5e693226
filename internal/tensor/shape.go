package tensor

import "fmt"

// Shape holds tensor dimensions, outermost first.
type Shape []int

// NumElements returns the product of the dimensions (1 for a scalar).
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes are identical.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return Shape{}
	}
	c := make(Shape, len(s))
	copy(c, s)
	return c
}

// ComputeStrides returns row-major strides: stride[i] is the product of all
// dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// NormalizeDim maps a negative dimension index onto [0, rank).
// Panics when dim is out of range.
func (s Shape) NormalizeDim(dim int) int {
	if dim < 0 {
		dim += len(s)
	}
	if dim < 0 || dim >= len(s) {
		panic(fmt.Sprintf("dimension %d out of range for shape %v", dim, s))
	}
	return dim
}

// BroadcastShapes applies NumPy broadcasting rules to a and b.
//
// Shapes are aligned on their trailing dimension; a pair of dimensions is
// compatible when equal or when one is 1. The second return value reports
// whether either operand needs expanding.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	n := max(len(a), len(b))
	out := make(Shape, n)
	needs := len(a) != len(b)

	for i := 0; i < n; i++ {
		ad, bd := 1, 1
		if j := len(a) - n + i; j >= 0 {
			ad = a[j]
		}
		if j := len(b) - n + i; j >= 0 {
			bd = b[j]
		}
		switch {
		case ad == bd:
			out[i] = ad
		case ad == 1:
			out[i] = bd
			needs = true
		case bd == 1:
			out[i] = ad
			needs = true
		default:
			return nil, false, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, i, ad, bd)
		}
	}
	return out, needs, nil
}
