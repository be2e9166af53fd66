// Package metrics records build and stage observations.
//
// Components receive a Recorder and default to NoopRecorder, so call sites
// never check for nil. PrometheusRecorder backs the real implementation: a
// one-shot build writes it to a node_exporter textfile, and the watch loop can
// serve it over HTTP.
package metrics
