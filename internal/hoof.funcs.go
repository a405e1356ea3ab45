package internal

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Func represents a callable function in expressions
type Func struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for variadic
	Fn      func(args []any) (any, error)
}

// FuncRegistry manages registered functions
type FuncRegistry struct {
	funcs map[string]*Func
	mu    sync.RWMutex
}

// NewFuncRegistry creates a new function registry
func NewFuncRegistry() *FuncRegistry {
	return &FuncRegistry{
		funcs: make(map[string]*Func),
	}
}

// NewBuiltinFuncRegistry returns a registry holding the builtin functions.
func NewBuiltinFuncRegistry() *FuncRegistry {
	r := NewFuncRegistry()
	RegisterBuiltinFuncs(r)
	return r
}

// Register adds a function to the registry
func (r *FuncRegistry) Register(f *Func) error {
	if f == nil {
		return NewFuncError(ErrMsgFuncNilFunc, "")
	}
	if f.Name == "" {
		return NewFuncError(ErrMsgFuncEmptyName, "")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[f.Name]; exists {
		return NewFuncError(ErrMsgFuncAlreadyExists, f.Name)
	}

	r.funcs[f.Name] = f
	return nil
}

// MustRegister adds a function and panics on error
func (r *FuncRegistry) MustRegister(f *Func) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Has checks if a function is registered
func (r *FuncRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.funcs[name]
	return ok
}

// Call invokes a function by name with the given arguments
func (r *FuncRegistry) Call(name string, args []any) (any, error) {
	r.mu.RLock()
	f, ok := r.funcs[name]
	r.mu.RUnlock()

	if !ok {
		return nil, NewFuncError(ErrMsgFuncNotFound, name)
	}

	argCount := len(args)
	if argCount < f.MinArgs {
		return nil, NewFuncArgError(ErrMsgFuncTooFewArgs, name, f.MinArgs, argCount)
	}
	if f.MaxArgs >= 0 && argCount > f.MaxArgs {
		return nil, NewFuncArgError(ErrMsgFuncTooManyArgs, name, f.MaxArgs, argCount)
	}

	result, err := f.Fn(args)
	if err != nil {
		return nil, NewExprEvalError(ErrMsgFuncFailed, fmt.Sprintf(ErrFmtWithCause, name, err))
	}
	return result, nil
}

// List returns all registered function names, sorted
func (r *FuncRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FuncError represents a function-related error
type FuncError struct {
	Message  string
	FuncName string
}

// NewFuncError creates a new function error
func NewFuncError(message, funcName string) *FuncError {
	return &FuncError{
		Message:  message,
		FuncName: funcName,
	}
}

// Error implements the error interface
func (e *FuncError) Error() string {
	if e.FuncName != "" {
		return fmt.Sprintf(ErrFmtWithPath, e.Message, e.FuncName)
	}
	return e.Message
}

// FuncArgError represents a function argument count error
type FuncArgError struct {
	Message  string
	FuncName string
	Expected int
	Actual   int
}

// NewFuncArgError creates a new function argument error
func NewFuncArgError(message, funcName string, expected, actual int) *FuncArgError {
	return &FuncArgError{
		Message:  message,
		FuncName: funcName,
		Expected: expected,
		Actual:   actual,
	}
}

// Error implements the error interface
func (e *FuncArgError) Error() string {
	return fmt.Sprintf("%s: %s (expected %d, got %d)", e.Message, e.FuncName, e.Expected, e.Actual)
}

// Function error messages
const (
	ErrMsgFuncNilFunc        = "function cannot be nil"
	ErrMsgFuncEmptyName      = "function name cannot be empty"
	ErrMsgFuncAlreadyExists  = "function already registered"
	ErrMsgFuncNotFound       = "function not found"
	ErrMsgFuncTooFewArgs     = "too few arguments"
	ErrMsgFuncTooManyArgs    = "too many arguments"
	ErrMsgFuncFailed         = "function call failed"
	ErrMsgFuncExpectedString = "expected string argument"
	ErrMsgFuncExpectedSlice  = "expected slice or array argument"
	ErrMsgFuncNoLength       = "value has no length"
)

// Built-in function names
const (
	FuncNameLen      = "len"
	FuncNameUpper    = "upper"
	FuncNameLower    = "lower"
	FuncNameTrim     = "trim"
	FuncNameJoin     = "join"
	FuncNameJSON     = "json"
	FuncNameDefault  = "default"
	FuncNameContains = "contains"
)

// Argument index constants
const (
	ArgIndexFirst  = 0
	ArgIndexSecond = 1
)

// DefaultJoinSeparator is used by join when no separator is given.
const DefaultJoinSeparator = ","

// RegisterBuiltinFuncs registers all built-in functions with the registry
func RegisterBuiltinFuncs(r *FuncRegistry) {
	registerStringFuncs(r)
	registerCollectionFuncs(r)
}

func registerStringFuncs(r *FuncRegistry) {
	stringFunc := func(name string, fn func(string) string) *Func {
		return &Func{
			Name:    name,
			MinArgs: 1,
			MaxArgs: 1,
			Fn: func(args []any) (any, error) {
				if args[ArgIndexFirst] == nil {
					return StringValueEmpty, nil
				}
				s, ok := toString(args[ArgIndexFirst])
				if !ok {
					return nil, NewFuncError(ErrMsgFuncExpectedString, name)
				}
				return fn(s), nil
			},
		}
	}

	r.MustRegister(stringFunc(FuncNameUpper, strings.ToUpper))
	r.MustRegister(stringFunc(FuncNameLower, strings.ToLower))
	r.MustRegister(stringFunc(FuncNameTrim, strings.TrimSpace))

	// json(v) string
	r.MustRegister(&Func{
		Name:    FuncNameJSON,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []any) (any, error) {
			return StringifyJSON(args[ArgIndexFirst]), nil
		},
	})

	// default(v, fallback) returns fallback when v is falsy
	r.MustRegister(&Func{
		Name:    FuncNameDefault,
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(args []any) (any, error) {
			if isTruthy(args[ArgIndexFirst]) {
				return args[ArgIndexFirst], nil
			}
			return args[ArgIndexSecond], nil
		},
	})
}

func registerCollectionFuncs(r *FuncRegistry) {
	// len(v) number
	r.MustRegister(&Func{
		Name:    FuncNameLen,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(args []any) (any, error) {
			v := args[ArgIndexFirst]
			if v == nil {
				return float64(0), nil
			}
			if s, ok := v.(string); ok {
				return float64(len([]rune(s))), nil
			}
			rv := reflect.ValueOf(v)
			switch rv.Kind() {
			case reflect.Slice, reflect.Array, reflect.Map:
				return float64(rv.Len()), nil
			default:
				return nil, NewFuncError(ErrMsgFuncNoLength, FuncNameLen)
			}
		},
	})

	// join(list, sep?) string
	r.MustRegister(&Func{
		Name:    FuncNameJoin,
		MinArgs: 1,
		MaxArgs: 2,
		Fn: func(args []any) (any, error) {
			sep := DefaultJoinSeparator
			if len(args) > ArgIndexSecond {
				sep = Stringify(args[ArgIndexSecond])
			}
			items, ok := Iterate(args[ArgIndexFirst])
			if !ok || (args[ArgIndexFirst] != nil && reflect.ValueOf(args[ArgIndexFirst]).Kind() == reflect.Map) {
				return nil, NewFuncError(ErrMsgFuncExpectedSlice, FuncNameJoin)
			}
			parts := make([]string, len(items))
			for i, item := range items {
				parts[i] = Stringify(item.Value)
			}
			return strings.Join(parts, sep), nil
		},
	})

	// contains(haystack, needle) bool over strings, lists and map keys
	r.MustRegister(&Func{
		Name:    FuncNameContains,
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(args []any) (any, error) {
			haystack, needle := args[ArgIndexFirst], args[ArgIndexSecond]
			if s, ok := haystack.(string); ok {
				return strings.Contains(s, Stringify(needle)), nil
			}
			if haystack == nil {
				return false, nil
			}
			rv := reflect.ValueOf(haystack)
			switch rv.Kind() {
			case reflect.Map:
				return lookupMember(haystack, Stringify(needle)) != nil, nil
			case reflect.Slice, reflect.Array:
				for i := 0; i < rv.Len(); i++ {
					if compareEqual(rv.Index(i).Interface(), needle) {
						return true, nil
					}
				}
				return false, nil
			default:
				return nil, NewFuncError(ErrMsgFuncExpectedSlice, FuncNameContains)
			}
		},
	})
}
