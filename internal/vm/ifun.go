package vm

import (
	"errors"
	"fmt"
	"math"

	"github.com/jorgicor/bas55/internal/compiler"
	"github.com/jorgicor/bas55/internal/numerics"
)

// Internal function codes, matching ifunCode in the compiler's expr.go.
const (
	ifunAbs = iota
	ifunAtn
	ifunCos
	ifunExp
	ifunInt
	ifunLog
	ifunRnd
	ifunSgn
	ifunSin
	ifunSqr
	ifunTan
)

// execIfun0 dispatches RND, the only nullary internal function.
func (vm *VM) execIfun0() {
	code := vm.fetchID()
	if code != ifunRnd {
		panic(fmt.Sprintf("vm: unexpected IFUN0 code %d", code))
	}
	vm.push(vm.rng.Float64())
}

// execIfun1 dispatches every unary internal function, mapping a
// numerics.DomainError to a fatal run-time error and a numerics.RangeError
// to a warning whose result still gets pushed, matching ifun1_op's
// EDOM/ERANGE handling.
func (vm *VM) execIfun1() {
	code := vm.fetchID()
	x := vm.pop()

	var z float64
	var err error

	switch code {
	case ifunAbs:
		z = math.Abs(x)
	case ifunAtn:
		z = numerics.Atan(x)
	case ifunCos:
		z, err = numerics.Cos(x)
	case ifunExp:
		z, err = numerics.Exp(x)
	case ifunInt:
		z = numerics.Floor(x)
	case ifunLog:
		z, err = numerics.Log(x)
	case ifunSgn:
		z = sign(x)
	case ifunSin:
		z, err = numerics.Sin(x)
	case ifunSqr:
		z, err = numerics.Sqrt(x)
	case ifunTan:
		z, err = numerics.Tan(x)
	default:
		panic(fmt.Sprintf("vm: unexpected IFUN1 code %d", code))
	}

	var domErr *numerics.DomainError
	var rngErr *numerics.RangeError
	switch {
	case errors.As(err, &domErr):
		vm.fatalErr(compiler.ErrDomain, fmt.Sprintf("%s(%v)", domErr.Func, x))
	case errors.As(err, &rngErr):
		vm.warn(compiler.ErrOpOverflow, fmt.Sprintf("%s(%v)", rngErr.Func, x))
	}

	vm.push(z)
}
