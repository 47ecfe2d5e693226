package tensor

import "math/rand"

// Zeros creates a zero-filled tensor.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](Shape{3, 4}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return New[T, B](MustNewRaw(shape, inferDataType[T](), b.Device()), b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn draws from the standard normal distribution using rng.
// Callers own the generator so that runs are reproducible from a seed.
func Randn[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	return RandNormal[T, B](shape, 0, 1, rng, b)
}

// RandNormal draws from N(mean, std²).
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	w := tensor.RandNormal[float32](Shape{16, 3, 3, 3}, 0, 0.02, rng, backend)
func RandNormal[T DType, B Backend](shape Shape, mean, std float64, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(mean + std*rng.NormFloat64())
	}
	return t
}

// RandUniform draws uniformly from [lo, hi).
func RandUniform[T DType, B Backend](shape Shape, lo, hi float64, rng *rand.Rand, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(lo + (hi-lo)*rng.Float64())
	}
	return t
}
