package backend

import (
	"net/http"
	"time"
)

// SharedTransport is the connection pool used by Probe.
var SharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// SharedClient is the default client for Probe.
var SharedClient = &http.Client{
	Transport: SharedTransport,
	Timeout:   30 * time.Second,
}
