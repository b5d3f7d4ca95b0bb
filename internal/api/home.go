package api

import "net/http"

// serviceInfo describes the running service.
type serviceInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

func home(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, "welcome", serviceInfo{
			Name:        "najdeno",
			Version:     version,
			Description: "lost and found service",
		})
	}
}

func versionHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, "version", map[string]string{"version": version})
	}
}
