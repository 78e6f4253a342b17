package java

import "fmt"

// InconsistentTypeParameterError reports a type variable that is declared
// nowhere in the chain of scopes enclosing its use, although every scope in
// that chain was imported. It fails the whole import.
type InconsistentTypeParameterError struct {
	Name string
	Site string
}

func (e *InconsistentTypeParameterError) Error() string {
	return fmt.Sprintf("type variable %s used in %s is not declared by any enclosing scope", e.Name, e.Site)
}
