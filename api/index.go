package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/linkshelf/pkg/app"
)

var mux http.Handler

func init() {
	// Note: On Vercel, a local sqlite file is ephemeral; point DATABASE_URL at Turso or Postgres
	h, err := app.Handler(app.NewContainer())
	if err != nil {
		panic(err)
	}
	mux = h
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
