// Package greetcount counts accesses per route in a key-value cache.
//
// Components:
//   - Provider: byte store with TTL (Redis, Ristretto, BigCache or in-process memory).
//   - Codec[int64]: counter <-> []byte. Decimal strings by default, so the values
//     stay readable and compatible with redis INCR.
//   - Accessor: Get(key, default) and fire-and-forget Set(key, value) over a Provider.
//   - Counter: the read, increment, write-back sequence served to each request.
//
// Keys:
//
//	<route path>        - when Namespace is empty
//	<ns>:<route path>   - otherwise
//
// In ModeReadModifyWrite (the default) two concurrent hits on one key may both
// read the same value and report the same count; the last write wins. Writes
// for a key are applied in issue order and a read waits for earlier writes to
// that key, so sequential hits always count 1, 2, 3, ...
//
// ModeAtomic delegates the increment to the store (redis INCR) and gives every
// hit a distinct count.
//
// Usage:
//
//	ctr, _ := greetcount.New(greetcount.Options{
//	    Provider: redisprovider.Dial("127.0.0.1:6379", "", 0),
//	})
//	defer ctr.Close(ctx)
//	n, err := ctr.Hit(ctx, greetcount.RouteBase.Path)
package greetcount
