package experiences

import "fmt"

// PersistenceError reports a failed read or write against the cache.
type PersistenceError struct {
	Op        string
	Partition Partition
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("experience cache %s (%s): %v", e.Op, e.Partition, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
