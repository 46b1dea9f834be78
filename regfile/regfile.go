// Package regfile models the flat 32-bit register file through which an
// external driver configures the controller and reads its status.
package regfile

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/horizon0210/PID-Controller-With-FPGA/ctrl"
	"github.com/horizon0210/PID-Controller-With-FPGA/duty"
)

// Offset is the byte offset of a register.
type Offset uint32

// Register offsets. The parameter registers hold float32 bit patterns and are
// laid out in the order of ctrl.CoeffID.
const (
	OffA0         Offset = 0x00
	OffC1         Offset = 0x04
	OffC2         Offset = 0x08
	OffC3         Offset = 0x0C
	OffC4         Offset = 0x10
	OffC5         Offset = 0x14
	OffC6         Offset = 0x18
	OffC7a        Offset = 0x1C
	OffC7b        Offset = 0x20
	OffLimit      Offset = 0x24
	OffRecipLimit Offset = 0x28
	OffTarget     Offset = 0x2C
	OffStatus     Offset = 0x30
	OffIllegal    Offset = 0x34
	OffOutput     Offset = 0x38
	OffPWM        Offset = 0x3C

	numWords = 16
)

// Status word layout.
const (
	StatusCountMask  = 0xFFFF
	StatusForwardBit = 1 << 16
	PWMCompareMask   = 0x7FFFFFFF
	PWMForwardBit    = 1 << 31
)

// Errors returned by register accesses.
var (
	ErrUnaligned = errors.New("unaligned register offset")
	ErrUnknown   = errors.New("no register at offset")
	ErrReadOnly  = errors.New("register is read-only")
)

// Register describes one register of the file.
type Register struct {
	Name     string
	Offset   Offset
	ReadOnly bool
	Float    bool
}

var registers = []Register{
	{"a0", OffA0, false, true},
	{"c1", OffC1, false, true},
	{"c2", OffC2, false, true},
	{"c3", OffC3, false, true},
	{"c4", OffC4, false, true},
	{"c5", OffC5, false, true},
	{"c6", OffC6, false, true},
	{"c7a", OffC7a, false, true},
	{"c7b", OffC7b, false, true},
	{"ysat", OffLimit, false, true},
	{"recip_ysat", OffRecipLimit, false, true},
	{"target", OffTarget, false, true},
	{"status", OffStatus, true, false},
	{"illegal", OffIllegal, true, false},
	{"output", OffOutput, true, true},
	{"pwm", OffPWM, true, false},
}

// Registers lists every register in offset order.
func Registers() []Register {
	return append([]Register(nil), registers...)
}

// Lookup finds a register by its name.
func Lookup(name string) (Register, bool) {
	name = strings.ToLower(name)

	for _, r := range registers {
		if r.Name == name {
			return r, true
		}
	}

	return Register{}, false
}

// File is a register file. Each word is accessed atomically, so a reader may
// see a mix of old and new words but never a torn word.
type File struct {
	words [numWords]atomic.Uint32
}

// New creates a register file with every word zero.
func New() *File {
	return new(File)
}

func index(off Offset) (int, error) {
	if off%4 != 0 {
		return 0, fmt.Errorf("%w: 0x%02X", ErrUnaligned, uint32(off))
	}

	i := int(off / 4)
	if i >= numWords {
		return 0, fmt.Errorf("%w: 0x%02X", ErrUnknown, uint32(off))
	}

	return i, nil
}

// Read32 reads a register as the driver would.
func (f *File) Read32(off Offset) (uint32, error) {
	i, err := index(off)
	if err != nil {
		return 0, err
	}

	return f.words[i].Load(), nil
}

// Write32 writes a register as the driver would.
func (f *File) Write32(off Offset, v uint32) error {
	i, err := index(off)
	if err != nil {
		return err
	}

	if off >= OffStatus {
		return fmt.Errorf("%w: 0x%02X", ErrReadOnly, uint32(off))
	}

	f.words[i].Store(v)

	return nil
}

// WriteFloat writes the bit pattern of a float32 register.
func (f *File) WriteFloat(off Offset, v float32) error {
	return f.Write32(off, math.Float32bits(v))
}

// ReadFloat reads a register as a float32.
func (f *File) ReadFloat(off Offset) (float32, error) {
	v, err := f.Read32(off)
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(v), nil
}

// Coefficient reads a parameter register. It satisfies
// ctrl.CoefficientSource.
func (f *File) Coefficient(id ctrl.CoeffID) float32 {
	return math.Float32frombits(f.words[int(id)].Load())
}

// Load writes a whole parameter set.
func (f *File) Load(k ctrl.Coefficients) {
	for id := ctrl.CoeffID(0); id < ctrl.NumCoeffs; id++ {
		f.words[int(id)].Store(math.Float32bits(k.Coefficient(id)))
	}
}

// Coefficients reads the whole parameter set.
func (f *File) Coefficients() ctrl.Coefficients {
	return ctrl.Snapshot(f)
}

// SetStatus publishes the latest count and decoded direction.
func (f *File) SetStatus(count int32, forward bool) {
	v := uint32(uint16(int16(count)))
	if forward {
		v |= StatusForwardBit
	}

	f.words[OffStatus/4].Store(v)
}

// SetIllegalCount publishes the illegal-transition counter.
func (f *File) SetIllegalCount(n uint32) {
	f.words[OffIllegal/4].Store(n)
}

// SetOutput publishes the latest controller output.
func (f *File) SetOutput(v float32) {
	f.words[OffOutput/4].Store(math.Float32bits(v))
}

// SetCommand publishes the latest duty command.
func (f *File) SetCommand(cmd duty.Command) {
	v := cmd.Compare & PWMCompareMask
	if cmd.Forward {
		v |= PWMForwardBit
	}

	f.words[OffPWM/4].Store(v)
}

// StatusCount decodes the signed count of a status word.
func StatusCount(status uint32) int16 {
	return int16(status & StatusCountMask)
}

// StatusForward decodes the direction bit of a status word.
func StatusForward(status uint32) bool {
	return status&StatusForwardBit != 0
}
