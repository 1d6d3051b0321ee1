package tulna

import (
	"fmt"
)

// Triple contains a subject, a predicate and an object term. The predicate
// position is not restricted to IRIs: graph patterns may carry variables or
// blank nodes there as well.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple returns a new triple with the given subject, predicate and object.
func NewTriple(subject Term, predicate Term, object Term) (triple *Triple) {
	return &Triple{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
	}
}

// String returns the NTriples representation of this triple.
func (triple Triple) String() (str string) {
	subjStr := "nil"
	if triple.Subject != nil {
		subjStr = triple.Subject.String()
	}

	predStr := "nil"
	if triple.Predicate != nil {
		predStr = triple.Predicate.String()
	}

	objStr := "nil"
	if triple.Object != nil {
		objStr = triple.Object.String()
	}

	return fmt.Sprintf("%s %s %s .", subjStr, predStr, objStr)
}

// Equal returns this triple is equivalent to another.
func (triple Triple) Equal(other *Triple) bool {
	return triple.Subject.Equal(other.Subject) &&
		triple.Predicate.Equal(other.Predicate) &&
		triple.Object.Equal(other.Object)
}
