// Package permission turns the server-shaped permission grant into a
// query-optimized structure.
//
// The backend describes what an actor may do as a nested module tree
// (the user type's sidebar_modules). Normalization happens once, at the
// trust boundary where that tree arrives; every later check is a set
// lookup, because route guards run these checks on every navigation.
//
// A Set never crosses a persistence boundary directly: Serialize produces
// a plain-data form safe for JSON storage and for the application-state
// replica, and Deserialize restores a query-equivalent Set.
package permission
