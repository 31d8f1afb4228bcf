// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package value

import "fmt"

// Path follows path from v and returns the value it reaches. Each element of
// path selects from the current value:
//
//   - A string selects the member of an object with that key.
//   - An int selects an element of an array. A negative index counts back
//     from the end, so -1 is the last element.
//   - A func(Value) (Value, error) maps the current value to the next one.
//
// If any element cannot be followed, Path returns v unchanged together with
// an error naming the offending element.
func Path(v Value, path ...any) (Value, error) {
	cur := v
	for i, elt := range path {
		next, err := follow(cur, elt)
		if err != nil {
			return v, fmt.Errorf("path element %d: %w", i, err)
		}
		cur = next
	}
	return cur, nil
}

func follow(cur Value, elt any) (Value, error) {
	switch t := elt.(type) {
	case string:
		obj, ok := cur.(*Object)
		if !ok {
			return nil, fmt.Errorf("cannot select key %q from %s", t, kindOf(cur))
		}
		if next, ok := obj.Get(t); ok {
			return next, nil
		}
		return nil, fmt.Errorf("key %q not found", t)

	case int:
		arr, ok := cur.(*Array)
		if !ok {
			return nil, fmt.Errorf("cannot select index %d from %s", t, kindOf(cur))
		}
		n := len(arr.Values)
		if t < 0 {
			t += n
		}
		if t < 0 || t >= n {
			return nil, fmt.Errorf("index %d out of range (n=%d)", elt, n)
		}
		return arr.Values[t], nil

	case func(Value) (Value, error):
		return t(cur)
	}
	return nil, fmt.Errorf("invalid path element %T", elt)
}

func kindOf(v Value) string {
	if v == nil {
		return "absent value"
	}
	return v.Kind().String()
}
