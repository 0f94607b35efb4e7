package responder

import "net/http"

// PanicFn is called when an envelope cannot be encoded or written.
type PanicFn func(http.ResponseWriter, *http.Request, error)

func DefaultPanicFn(w http.ResponseWriter, r *http.Request, err error) {
	panic(err)
}

// Observer is notified of every envelope a Responder writes.
type Observer interface {
	Observe(kind Kind, status int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(kind Kind, status int)

func (f ObserverFunc) Observe(kind Kind, status int) {
	f(kind, status)
}
