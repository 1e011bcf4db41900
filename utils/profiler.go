package utils

import (
	"github.com/rostsocial/rost/utils/flag"
	. "github.com/rostsocial/rost/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

// InitProfiler starts the Datadog profiler. Failing to start it is not fatal,
// the service runs without profiles.
func InitProfiler() {
	env := "development"
	if IsProdEnv() {
		env = "production"
	}

	if err := profiler.Start(
		profiler.WithService(*flag.ServiceName),
		profiler.WithEnv(env),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
		),
	); err != nil {
		Log.Errorf("profiler not started: %v", err)
	}
}

// Stop profiler, OK to be closed multiple times
func CloseProfiler() {
	// Datadog profiler
	profiler.Stop()
}
