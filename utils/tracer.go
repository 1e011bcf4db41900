package utils

import (
	"github.com/rostsocial/rost/utils/flag"
	. "github.com/rostsocial/rost/utils/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// InitTracer starts the Datadog tracer for the current service.
func InitTracer() {
	env := "development"
	if IsProdEnv() {
		env = "production"
	}

	tracer.Start(
		tracer.WithService(*flag.ServiceName),
		tracer.WithEnv(env),
	)

	Log.WithFields(
		logrus.Fields{"service": *flag.ServiceName, "env": env},
	).Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	// Datadog tracer
	tracer.Stop()
}
