// Package pgbin converts between Go values and the PostgreSQL binary wire
// format used by the extended query protocol for statement parameters and
// result rows.
//
// The package never performs I/O and never parses SQL. Its contract begins
// with a Go value of a registered shape and ends with a column byte span, and
// the reverse. A nil byte span represents SQL NULL, matching the DataRow and
// Bind message conventions; the caller (normally a connection layer) owns the
// length framing around each span.
//
// A Map holds everything derived at registration time: the wire layout tree
// for each type, numeric type OIDs from the schema catalog, and the
// reflection-derived description of each registered Go struct or enum type.
// Registration happens once, before concurrent use. After registration a Map
// is immutable and all encode/decode calls are pure functions that are safe
// to call concurrently.
//
//	m := pgbin.NewMap()
//	shape, err := m.DeriveRowShape(Person{})
//	...
//	params, err := m.EncodeParams(shape, "alice", int32(30))
//
// Custom enum and composite types are registered with the OIDs assigned by
// the database catalog:
//
//	pgbin.RegisterEnum(m, "mood", 16411, 16410, MoodHappy, MoodSad)
//	m.RegisterComposite("dimensions", 16420, 16421, Dimensions{})
package pgbin
