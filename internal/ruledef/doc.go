// Package ruledef compiles declarative CUE rule files into runtime
// rules.
//
// A rule file declares rules under the top-level "rule" struct:
//
//	rule: "log-increment": {
//		when: [{action: "Counter.increment", output: {total: "?total"}}]
//		then: [{action: "Logger.record", input: {value: "?total"}}]
//	}
//
// Strings beginning with "?" are pattern variables; every other scalar
// is a literal. A leading "??" escapes to a literal "?". Optional
// "where" steps join frames against concept queries:
//
//	where: [{query: "Inventory.stock", input: {warehouse: "?wh"}, output: {item: "?item"}}]
//
// Variable reachability is deliberately not checked at compile time: a
// then template referencing a variable no when clause binds only fails
// when a matching frame actually lacks it.
package ruledef
