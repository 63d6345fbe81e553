// Package ledger implements the append-only action ledger.
//
// Every concept action invocation becomes an ActionRecord: appended while
// pending, then completed exactly once by attaching an output. Records are
// grouped by flow token and kept in append order, which is the order the
// matching engine scans them in.
//
// The ledger is not safe for concurrent use. The runtime serializes all
// access through its own lock.
package ledger
