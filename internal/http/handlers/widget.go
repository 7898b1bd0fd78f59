package handlers

import (
	"io/fs"
	"net/http"

	"tryon-server/web"
)

// WidgetAssets serves the embedded widget script and stylesheet under
// /widget/. Merchants load these straight off the API host.
func WidgetAssets() http.Handler {
	sub, err := fs.Sub(web.Assets, "widget")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/widget/", http.FileServerFS(sub))
}

// Demo serves the embedded demo page showing the widget wired against this
// server.
func Demo(w http.ResponseWriter, r *http.Request) {
	data, err := web.Assets.ReadFile("demo.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}
