// Package fpu models the single-precision arithmetic units that the
// controller schedulers share. A unit accepts one request at a time through a
// ready/valid handshake and returns its result after a fixed latency.
package fpu

import "fmt"

// Op is an operation that an arithmetic unit can perform.
type Op uint8

// The operations known to the arithmetic units.
const (
	OpFMA        Op = iota // a*b + c, rounded once
	OpFMS                  // a*b - c, rounded once
	OpCompare              // relation of a to b
	OpIntToFloat           // float32(i)
	OpMul                  // a*b
	OpFloatToInt           // truncation of a toward zero
	numOps
)

var opNames = [...]string{
	OpFMA:        "FMA",
	OpFMS:        "FMS",
	OpCompare:    "CMP",
	OpIntToFloat: "I2F",
	OpMul:        "MUL",
	OpFloatToInt: "F2I",
}

func (o Op) String() string {
	if o >= numOps {
		return fmt.Sprintf("Op(%d)", uint8(o))
	}

	return opNames[o]
}

// CmpResult encodes the outcome of a compare. Exactly one flag is set for
// ordered operands; no flag is set when either operand is NaN.
type CmpResult uint8

// Compare outcome flags.
const (
	CmpLess    CmpResult = 1 << 0
	CmpEqual   CmpResult = 1 << 1
	CmpGreater CmpResult = 1 << 2
)

// Less reports whether a < b.
func (c CmpResult) Less() bool { return c&CmpLess != 0 }

// Equal reports whether a == b.
func (c CmpResult) Equal() bool { return c&CmpEqual != 0 }

// Greater reports whether a > b.
func (c CmpResult) Greater() bool { return c&CmpGreater != 0 }

// Unordered reports whether the operands could not be ordered.
func (c CmpResult) Unordered() bool { return c == 0 }

func (c CmpResult) String() string {
	switch c {
	case CmpLess:
		return "LT"
	case CmpEqual:
		return "EQ"
	case CmpGreater:
		return "GT"
	case 0:
		return "UN"
	default:
		return fmt.Sprintf("CmpResult(%#x)", uint8(c))
	}
}

// Request carries the operands of one operation. Which operands are used
// depends on Op: A, B, C for FMA/FMS, A and B for MUL and CMP, A for F2I and
// I for I2F.
type Request struct {
	Op      Op
	A, B, C float32
	I       int32
}

// Result is the outcome of one request. F holds floating-point results, I
// holds F2I results and Cmp holds compare results.
type Result struct {
	Op  Op
	F   float32
	I   int32
	Cmp CmpResult
}

// FMA builds a fused multiply-add request computing a*b + c.
func FMA(a, b, c float32) Request {
	return Request{Op: OpFMA, A: a, B: b, C: c}
}

// FMS builds a fused multiply-subtract request computing a*b - c.
func FMS(a, b, c float32) Request {
	return Request{Op: OpFMS, A: a, B: b, C: c}
}

// Compare builds a request that compares a against b.
func Compare(a, b float32) Request {
	return Request{Op: OpCompare, A: a, B: b}
}

// IntToFloat builds a signed integer to float conversion request.
func IntToFloat(i int32) Request {
	return Request{Op: OpIntToFloat, I: i}
}

// Mul builds a multiply request.
func Mul(a, b float32) Request {
	return Request{Op: OpMul, A: a, B: b}
}

// FloatToInt builds a truncating float to integer conversion request.
func FloatToInt(a float32) Request {
	return Request{Op: OpFloatToInt, A: a}
}
