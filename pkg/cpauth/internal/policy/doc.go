// Package policy holds static checks over the cpauth packages. It has no non-test code.
//
// The checks load the packages with golang.org/x/tools/go/packages and walk their syntax trees
// looking for constructs which are easy to write and dangerous in this code base: narrowing a
// *big.Int to a machine word, formatting values in hex, and comparing byte slices with ==.
package policy
