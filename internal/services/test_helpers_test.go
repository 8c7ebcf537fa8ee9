package services_test

import (
	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/pkg/logger"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

func newTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AppEnv: "development"},
		Contact: config.ContactConfig{
			OwnerEmail:             "owner@portfolio.dev",
			FromEmail:              "hello@portfolio.dev",
			AutoReplyEnabled:       true,
			DispatchTimeoutSeconds: 1,
		},
		Store: config.StoreConfig{TimeoutSeconds: 1},
	}
}

const validBody = `{
	"name": "Jo Doe",
	"email": "jo@example.com",
	"company": "Acme",
	"subject": "New website",
	"message": "We would like to talk about a redesign.",
	"projectType": "web",
	"budget": "10k-20k",
	"timeline": "Q3"
}`
