/*
Package observability turns validation passes into metrics, logs and stored
reports.

Each helper returns typeguard.Hooks, so they compose with typeguard.MultiHooks
and are attached with typeguard.WithHooks:

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	fn, err := typeguard.New("f", f, sig, typeguard.WithHooks(typeguard.MultiHooks(
		metrics.Hooks(),
		observability.LogHooks(logger),
		observability.SinkHooks(sink, logger),
	)))
*/
package observability
