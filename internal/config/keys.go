package config

// KeySource says where a resolved credential came from.
type KeySource int

const (
	KeyMissing KeySource = iota
	KeySystemDefault
	KeyUserProvided
)

func (s KeySource) String() string {
	switch s {
	case KeyUserProvided:
		return "user"
	case KeySystemDefault:
		return "system"
	default:
		return "missing"
	}
}

// ResolvedKey is a credential tagged with its origin, so callers can
// tell a per-user key apart from the shared system fallback.
type ResolvedKey struct {
	Value  string
	Source KeySource
}

// ResolveKey picks the user-provided value when set, otherwise the
// system default. Only the empty string counts as unset.
func ResolveKey(userValue, systemValue string) ResolvedKey {
	if userValue != "" {
		return ResolvedKey{Value: userValue, Source: KeyUserProvided}
	}
	if systemValue != "" {
		return ResolvedKey{Value: systemValue, Source: KeySystemDefault}
	}
	return ResolvedKey{Source: KeyMissing}
}

// IsSet reports whether the key resolved to a usable value.
func (k ResolvedKey) IsSet() bool {
	return k.Source != KeyMissing
}
