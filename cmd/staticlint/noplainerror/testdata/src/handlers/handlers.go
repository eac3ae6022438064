package handlers

import (
	"encoding/json"
	"net/http"
)

func plain(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "boom", http.StatusInternalServerError) // want "http.Error writes text/plain"
}

func envelope(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "bad"})
}

type fake struct{}

func (fake) Error(string) {}

func method() {
	var f fake
	f.Error("not net/http")
}
