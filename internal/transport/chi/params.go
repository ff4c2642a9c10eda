package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// queryInt binds an optional integer query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return 0, err //nolint:wrapcheck // message is returned to the client as-is
	}
	if v == nil {
		return def, nil
	}
	return *v, nil
}

// queryString binds a query string parameter.
func queryString(r *http.Request, name string, required bool) (string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), &v); err != nil {
		return "", err //nolint:wrapcheck // message is returned to the client as-is
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// pathString binds a required path parameter.
func pathString(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	return v, err //nolint:wrapcheck // message is returned to the client as-is
}
