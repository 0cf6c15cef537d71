package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/travel-crm/internal/pkg/httputil"
)

// queryInt reads an optional non-negative integer query parameter. Zero
// means "use the service default". On a bad value it writes a 400.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		httputil.BadRequest(w, "invalid "+name)
		return 0, false
	}
	return n, true
}

func pathTestID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.BadRequest(w, "invalid ab test id")
		return 0, false
	}
	return id, true
}
