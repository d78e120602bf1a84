// Package algebra provides the operations that produce join entries.
//
// An Operation describes where an entry's bindings come from. Strategies
// treat it as opaque; it is read by the variable-counting estimator, the
// SQL compiler of the quad store, and plan explanations.
//
// SEALED INTERFACE:
//
// Operation is sealed with a marker method so backends can switch over it
// exhaustively:
//
//	switch op := op.(type) {
//	case *Pattern:
//	    // quad pattern over a store
//	case *Values:
//	    // inline rows
//	case *Join:
//	    // nested join
//	}
//
// SPARQL MAPPING:
//
//	algebra              SPARQL
//	-------              ------
//	Pattern              triple/quad pattern (?s <p> ?o)
//	Values               VALUES ?x ?y { ... }
//	Join(Inner)          group graph pattern
//	Join(Optional)       OPTIONAL { ... }
//	Join(Minus)          MINUS { ... }
package algebra
