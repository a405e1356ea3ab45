package hoof

import (
	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-hoof/internal"
)

// Func represents a custom function that can be called in expressions.
type Func struct {
	// Name is the function identifier used in expressions (e.g., "double" for double(x))
	Name string
	// MinArgs is the minimum number of arguments required
	MinArgs int
	// MaxArgs is the maximum number of arguments allowed (-1 for variadic)
	MaxArgs int
	// Fn is the function implementation
	Fn func(args []any) (any, error)
}

// Function registration error messages
const (
	ErrMsgFuncNil       = "function cannot be nil"
	ErrMsgFuncEmptyName = "function name cannot be empty"
	ErrMsgFuncRegister  = "function registration failed"
)

// RegisterFunc registers a custom function for use in expressions, in
// conditions, loop bounds, bindings and placeholders alike.
//
// Example:
//
//	engine.RegisterFunc(&hoof.Func{
//	    Name:    "double",
//	    MinArgs: 1,
//	    MaxArgs: 1,
//	    Fn: func(args []any) (any, error) {
//	        n, _ := args[0].(float64)
//	        return n * 2, nil
//	    },
//	})
//
// The function can then be used in views:
//
//	<if :="double(count) > 10">...</if>
func (e *Engine) RegisterFunc(f *Func) error {
	if f == nil {
		return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgFuncNil)
	}
	if f.Name == StringValueEmpty {
		return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgFuncEmptyName)
	}

	err := e.funcs.Register(&internal.Func{
		Name:    f.Name,
		MinArgs: f.MinArgs,
		MaxArgs: f.MaxArgs,
		Fn:      f.Fn,
	})
	if err != nil {
		return cuserr.WrapStdError(err, ErrCodeRegistry, ErrMsgFuncRegister).
			WithMetadata(MetaKeyFuncName, f.Name)
	}
	return nil
}

// MustRegisterFunc registers a custom function and panics on error.
func (e *Engine) MustRegisterFunc(f *Func) {
	if err := e.RegisterFunc(f); err != nil {
		panic(err)
	}
}

// HasFunc checks if a function is registered with the given name.
func (e *Engine) HasFunc(name string) bool {
	return e.funcs.Has(name)
}

// ListFuncs returns all registered function names, sorted.
func (e *Engine) ListFuncs() []string {
	return e.funcs.List()
}
