// Package filtering narrows a prepared bond dataset by the screening controls.
//
// A Criteria value holds one entry per control. Predicates turns the active
// entries into independent row tests which Select combines with logical AND,
// so the order of predicates never changes the result. Apply wraps that into
// a View and attaches an EmptyResultWarning when nothing matches.
//
// BuildOptions lists the values each control can take for a given dataset and
// DefaultCriteria mirrors the dashboard's initial control state.
package filtering
