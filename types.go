package mutations

// Type tags the declared type of a field. The set is closed; TypeCustom covers
// caller-supplied coercion and checks.
type Type int

const (
	TypeAny Type = iota
	TypeString
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeTime
	TypeArray
	TypeHash
	TypeCustom
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeTime:
		return "time"
	case TypeArray:
		return "array"
	case TypeHash:
		return "hash"
	case TypeCustom:
		return "custom"
	default:
		return "any"
	}
}

// ParseType maps a type name (as used in YAML declarations) back to its tag.
func ParseType(s string) (Type, bool) {
	switch s {
	case "string":
		return TypeString, true
	case "integer", "int":
		return TypeInteger, true
	case "float", "number":
		return TypeFloat, true
	case "boolean", "bool":
		return TypeBoolean, true
	case "time", "date":
		return TypeTime, true
	case "array":
		return TypeArray, true
	case "hash", "object":
		return TypeHash, true
	case "custom":
		return TypeCustom, true
	case "any":
		return TypeAny, true
	}
	return TypeAny, false
}

// State is a command run's position in its lifecycle:
// Pending -> Validating -> (Failed | Executing) -> (Succeeded | Failed).
type State int

const (
	StatePending State = iota
	StateValidating
	StateExecuting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateExecuting:
		return "executing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool { return s == StateSucceeded || s == StateFailed }
