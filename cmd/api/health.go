package main

import (
	"net/http"
	"time"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Env       string            `json:"env"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	queueStatus := "disabled"
	if app.broker != nil {
		queueStatus = "ok"
	}

	bridgeStatus := "noop"
	if app.config.bridge.BaseURL != "" {
		bridgeStatus = "ok"
	}

	response := HealthResponse{
		Status:    "healthy",
		Version:   version,
		Env:       app.config.env,
		Timestamp: time.Now(),
		Services: map[string]string{
			"queue":  queueStatus,
			"bridge": bridgeStatus,
		},
	}

	if err := writeJson(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
