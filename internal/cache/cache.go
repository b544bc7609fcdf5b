// Package cache stores encoded calculation results keyed by a hash of the
// canonical request. Results are pure functions of the request and the rate
// tables, so a hit can be served as is.
package cache

import (
	"context"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
}

// Key hashes the namespace and the encoded request.
func Key(namespace string, body []byte) string {
	d := xxhash.New()
	_, _ = d.WriteString(namespace)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(body)
	return namespace + ":" + strconv.FormatUint(d.Sum64(), 16)
}
