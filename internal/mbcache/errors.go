package mbcache

import "fmt"

// CacheError reports an I/O, schema, or decoding failure in the cache store.
type CacheError struct {
	Op   string
	RGID string
	Err  error
}

func (e *CacheError) Error() string {
	if e.RGID != "" {
		return fmt.Sprintf("mbcache: %s %s: %v", e.Op, e.RGID, e.Err)
	}
	return fmt.Sprintf("mbcache: %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

func cacheError(op, rgid string, err error) error {
	return &CacheError{Op: op, RGID: rgid, Err: err}
}
