package utils

import (
	"os"
	"sync"
)

var hostname = sync.OnceValue(func() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "unknown"
})

// GetHost is os.Hostname, read once. Failures yield "unknown".
func GetHost() string {
	return hostname()
}
