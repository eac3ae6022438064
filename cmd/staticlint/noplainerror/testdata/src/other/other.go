package other

import "net/http"

func page(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "fine outside handlers", http.StatusBadRequest)
}
