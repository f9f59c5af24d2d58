package vm

import (
	"fmt"

	"digitron/pkg/errors"
)

const (
	// InputCount is the number of input slots, one per lowercase letter.
	InputCount = 'z' - 'a' + 1
	// RegisterCount is the number of register slots addressable by
	// @load/@store.
	RegisterCount = 10
)

// Environment is the fixed-size numeric store an expression evaluates
// against: 26 input slots bound externally per evaluation round, and 10
// registers mutated only by @store. All slots start at zero.
//
// An Environment is mutable state for exactly one evaluation context; it is
// not safe for concurrent use.
type Environment struct {
	inputs    [InputCount]float64
	registers [RegisterCount]float64
}

// NewEnvironment creates an environment with all slots zeroed.
func NewEnvironment() *Environment {
	return &Environment{}
}

// Reset zeroes every input and register slot, making the environment fresh
// for the next evaluation round.
func (env *Environment) Reset() {
	env.inputs = [InputCount]float64{}
	env.registers = [RegisterCount]float64{}
}

// BindInput sets the input slot for the given letter. Letters outside a-z
// are an explicit error rather than unchecked indexing.
func (env *Environment) BindInput(name byte, value float64) error {
	if name < 'a' || name > 'z' {
		return &errors.RuntimeError{Msg: fmt.Sprintf("input %q is not a letter a-z", string(name))}
	}
	env.inputs[name-'a'] = value
	return nil
}

// Input returns the current value of the input slot for the given letter.
func (env *Environment) Input(name byte) (float64, error) {
	if name < 'a' || name > 'z' {
		return 0, &errors.RuntimeError{Msg: fmt.Sprintf("input %q is not a letter a-z", string(name))}
	}
	return env.inputs[name-'a'], nil
}

// LoadRegister returns the current value of register index.
func (env *Environment) LoadRegister(index int8) (float64, error) {
	if index < 0 || index >= RegisterCount {
		return 0, &errors.RuntimeError{Msg: fmt.Sprintf("register index %d out of range 0-%d", index, RegisterCount-1)}
	}
	return env.registers[index], nil
}

// StoreRegister writes value into register index and returns the value, so
// @store can be used as a sub-expression.
func (env *Environment) StoreRegister(index int8, value float64) (float64, error) {
	if index < 0 || index >= RegisterCount {
		return 0, &errors.RuntimeError{Msg: fmt.Sprintf("register index %d out of range 0-%d", index, RegisterCount-1)}
	}
	env.registers[index] = value
	return value, nil
}
