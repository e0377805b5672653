// Package token computes Cassandra Murmur3Partitioner tokens, used to
// order partitions across a range scan (spec.md §4.11: "ascending by
// partition token").
package token

import "github.com/twmb/murmur3"

// Token is a Murmur3 partitioner token: the signed 64-bit hash of a
// partition key.
type Token int64

// ForKey computes the Murmur3Partitioner token for a partition key, the
// same hash Cassandra's default partitioner uses.
func ForKey(partitionKey []byte) Token {
	h, _ := murmur3.Sum128(partitionKey)
	return Token(int64(h))
}

// Less orders tokens ascending, matching a range scan's required iteration
// order.
func Less(a, b Token) bool { return a < b }

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func Compare(a, b Token) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
