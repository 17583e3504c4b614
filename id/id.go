// Package id generates client order identifiers.
package id

import "github.com/oklog/ulid/v2"

// New returns a ULID string. ULIDs sort lexicographically by creation
// time, which keeps journal rows and venue client-order ids in
// submission order without a separate sequence column.
func New() string {
	return ulid.Make().String()
}
