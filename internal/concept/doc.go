// Package concept defines how concepts expose themselves to the runtime.
//
// A concept registers its actions and queries explicitly through the
// builder in this package. There is no reflection: the runtime only ever
// sees named functions over ir values.
//
// Actions mutate concept state and return a single output object. Queries
// are pure reads returning zero or more rows. Concepts never call each
// other; all composition happens through synchronization rules.
package concept
