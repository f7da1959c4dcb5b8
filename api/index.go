package handler

import (
	"net/http"
	"sync"

	"todoapi/config"
	"todoapi/di"
	_ "todoapi/docs"
	"todoapi/shared/logger"
	todoHTTP "todoapi/transport/http"
)

var (
	service *todoHTTP.HTTP
	once    sync.Once
)

// Handler is the serverless entry point. The service graph is built on the
// first invocation and reused by warm instances.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger(cfg)

		logger.SetLogLevel(cfg)

		service = di.InitializeService()
	})

	r.RequestURI = r.URL.String()

	service.ServeHTTP(w, r)
}
