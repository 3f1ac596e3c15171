// Package aassert provides a set of testing tools
// for use with the normal Go testing system.
//
// Use it next to the stretchr/testify/assert package, for assertions
// that go beyond what testify is offering. aassert follows the design
// decisions of testify/assert as close as possible:
// each assertion reports the failure on t and returns if it passed.
//
// # Example
//
//	func TestBookPatch(t *testing.T) {
//		aassert.PatchOf(t, domain.Book{}, domain.BookPatch{}, "key")
//	}
package aassert
