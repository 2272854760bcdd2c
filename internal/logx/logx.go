// Package logx holds the bracketed log lines shared by the client packages.
package logx

import (
	"log"
	"time"
)

// LogRequest logs an API request being made.
func LogRequest(component, method, url, requestID string) {
	log.Printf("[%s] %s %s request_id=%s", component, method, url, requestID)
}

// LogResponse logs an API response received.
func LogResponse(component string, statusCode int, duration time.Duration, resultCount int) {
	log.Printf("[%s] response status=%d duration=%dms results=%d",
		component, statusCode, duration.Milliseconds(), resultCount)
}

// LogError logs an error from an operation.
func LogError(component, operation string, err error) {
	log.Printf("[%s] %s error: %v", component, operation, err)
}

// LogTransform logs normalization of raw records.
func LogTransform(component string, inputCount, outputCount int, duration time.Duration) {
	log.Printf("[%s] normalized %d -> %d records in %dms",
		component, inputCount, outputCount, duration.Milliseconds())
}

// LogTransition logs a session state change.
func LogTransition(component, from, to, message string) {
	if message == "" {
		log.Printf("[%s] %s -> %s", component, from, to)
		return
	}
	log.Printf("[%s] %s -> %s (%s)", component, from, to, message)
}
