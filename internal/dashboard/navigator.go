package dashboard

import "net/http"

// Navigator moves the client to another view. The card only ever calls it
// from the "see all" control.
type Navigator interface {
	Navigate(w http.ResponseWriter, r *http.Request, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(w http.ResponseWriter, r *http.Request, path string)

func (f NavigatorFunc) Navigate(w http.ResponseWriter, r *http.Request, path string) {
	f(w, r, path)
}
