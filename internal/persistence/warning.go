package persistence

import "fmt"

// PersistenceWarning describes a failed save or load. It is logged and
// counted, never handed to a caller of the social service.
type PersistenceWarning struct {
	Op   string
	Path string
	Err  error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("%s %s: %v", w.Op, w.Path, w.Err)
}

func (w *PersistenceWarning) Unwrap() error {
	return w.Err
}
