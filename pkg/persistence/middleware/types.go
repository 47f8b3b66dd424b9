package middleware

import "github.com/aretw0/typeguard/pkg/ports"

// Middleware allows wrapping a ReportSink to add behavior.
type Middleware func(ports.ReportSink) ports.ReportSink

// Chain applies middlewares so that the first one sees reports first.
func Chain(sink ports.ReportSink, mws ...Middleware) ports.ReportSink {
	for i := len(mws) - 1; i >= 0; i-- {
		sink = mws[i](sink)
	}
	return sink
}
