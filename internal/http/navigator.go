package http

import (
	"net/http"

	"spesedash/internal/dashboard"
)

// RedirectNavigator moves the browser to another page. htmx requests get an
// HX-Redirect header so htmx performs a full page load; plain requests get
// a 303 See Other.
var RedirectNavigator dashboard.Navigator = dashboard.NavigatorFunc(navigate)

func navigate(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect(path).Write(w)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
