package tools

import "strconv"

// StringArg reads a string argument, returning "" when absent or of the
// wrong type.
func StringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// IntArg reads an integer argument. Models deliver JSON numbers as
// float64 and sometimes quote integers, so both are accepted.
func IntArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
