package fpu

import (
	"log"
	"math"
	"math/big"
)

// signBit is the IEEE-754 single-precision sign bit.
const signBit = 0x80000000

// overflowTie is the float64 value halfway between math.MaxFloat32 and
// 2^128. Values at or beyond it round to infinity in single precision.
const overflowTie = math.MaxFloat32 + 0x1p103

// Execute performs req and returns its result. Execute is a pure function of
// the request; the units only add latency and the handshake around it.
func Execute(req Request) Result {
	res := Result{Op: req.Op}

	switch req.Op {
	case OpFMA:
		res.F = FusedMulAdd(req.A, req.B, req.C)
	case OpFMS:
		res.F = FusedMulAdd(req.A, req.B, NegateSign(req.C))
	case OpCompare:
		res.Cmp = CompareValues(req.A, req.B)
	case OpIntToFloat:
		res.F = float32(req.I)
	case OpMul:
		res.F = Multiply(req.A, req.B)
	case OpFloatToInt:
		res.I = Truncate(req.A)
	default:
		log.Panicf("unknown operation %s", req.Op)
	}

	return res
}

// FusedMulAdd returns a*b + c computed exactly and rounded once to single
// precision with round-to-nearest-even.
func FusedMulAdd(a, b, c float32) float32 {
	r := math.FMA(float64(a), float64(b), float64(c))

	// The double precision result is already correctly rounded. Rounding it
	// again to single precision only goes wrong when it lands exactly between
	// two single precision neighbours.
	if !isSingleMidpoint(r) {
		return float32(r)
	}

	return fusedMulAddExact(a, b, c)
}

func isSingleMidpoint(r float64) bool {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return false
	}

	if math.Abs(r) == overflowTie {
		return true
	}

	f := float32(r)
	if float64(f) == r || math.IsInf(float64(f), 0) {
		return false
	}

	toward := float32(math.Copysign(math.Inf(1), r-float64(f)))
	g := math.Nextafter32(f, toward)

	var mid float64
	if math.IsInf(float64(g), 0) {
		mid = math.Copysign(overflowTie, r)
	} else {
		mid = (float64(f) + float64(g)) / 2
	}

	return r == mid
}

func fusedMulAddExact(a, b, c float32) float32 {
	// Wide enough to hold any sum of a single precision product and addend
	// without rounding.
	const prec = 640

	x := new(big.Float).SetPrec(prec).SetFloat64(float64(a))
	y := new(big.Float).SetPrec(prec).SetFloat64(float64(b))
	z := new(big.Float).SetPrec(prec).SetFloat64(float64(c))

	x.Mul(x, y)
	x.Add(x, z)

	f, _ := x.Float32()

	return f
}

// Multiply returns a*b rounded once to single precision.
func Multiply(a, b float32) float32 {
	// The product of two single precision values is exact in double
	// precision.
	return float32(float64(a) * float64(b))
}

// CompareValues orders a against b following IEEE-754: -0 equals +0 and any
// NaN operand is unordered.
func CompareValues(a, b float32) CmpResult {
	switch {
	case a < b:
		return CmpLess
	case a > b:
		return CmpGreater
	case a == b:
		return CmpEqual
	default:
		return 0
	}
}

// Truncate converts f to an integer, rounding toward zero. NaN converts to 0
// and out of range values saturate.
func Truncate(f float32) int32 {
	switch {
	case math.IsNaN(float64(f)):
		return 0
	case f >= 0x1p31:
		return math.MaxInt32
	case f < -0x1p31:
		return math.MinInt32
	default:
		return int32(f)
	}
}

// NegateSign flips the sign bit of f. Unlike arithmetic negation it is a
// pure bit operation, so NaN payloads and zeros are flipped too.
func NegateSign(f float32) float32 {
	return math.Float32frombits(math.Float32bits(f) ^ signBit)
}

// Abs clears the sign bit of f.
func Abs(f float32) float32 {
	return math.Float32frombits(math.Float32bits(f) &^ signBit)
}

// SignBit reports whether the sign bit of f is set.
func SignBit(f float32) bool {
	return math.Float32bits(f)&signBit != 0
}
