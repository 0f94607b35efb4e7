package exception

import "net/http"

// Reporter receives server-side failures: 5xx errors and anything the
// renderer does not recognize.
type Reporter interface {
	Report(r *http.Request, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(r *http.Request, err error)

func (f ReporterFunc) Report(r *http.Request, err error) {
	f(r, err)
}
