package router

import (
	"context"
	"fmt"

	lua "github.com/Shopify/go-lua"

	"github.com/aretw0/hobnob/pkg/domain"
)

// Lua evaluates conditions as Lua expressions with state keys bound as
// globals. This is a general-purpose language: a hostile condition string
// can run arbitrary Lua, so the router is registered disabled and must be
// enabled explicitly for trusted flow definitions only.
type Lua struct{}

// Check evaluates "return (condition)" in a fresh Lua state per call, so
// conditions cannot leak values into each other.
func (Lua) Check(ctx context.Context, condition string, state domain.State) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	l := lua.NewState()
	lua.OpenLibraries(l)

	for key, value := range state {
		if err := pushLuaValue(l, value); err != nil {
			return false, &EvalError{Router: NameLua, Condition: condition, Err: err}
		}
		l.SetGlobal(key)
	}

	if err := lua.DoString(l, "return ("+condition+")"); err != nil {
		return false, &EvalError{Router: NameLua, Condition: condition, Err: err}
	}
	result := l.ToBoolean(-1)
	l.Pop(1)
	return result, nil
}

func pushLuaValue(l *lua.State, value any) error {
	switch v := value.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(v)
	case string:
		l.PushString(v)
	case int:
		l.PushInteger(v)
	case int64:
		l.PushNumber(float64(v))
	case float64:
		l.PushNumber(v)
	case []any:
		l.NewTable()
		for i, elem := range v {
			if err := pushLuaValue(l, elem); err != nil {
				return err
			}
			l.RawSetInt(-2, i+1)
		}
	case map[string]any:
		l.NewTable()
		for key, elem := range v {
			if err := pushLuaValue(l, elem); err != nil {
				return err
			}
			l.SetField(-2, key)
		}
	default:
		return fmt.Errorf("state value of type %T cannot be represented in lua", value)
	}
	return nil
}
