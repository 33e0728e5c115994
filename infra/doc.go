// Package infra groups the adapters the dispatch engine talks to:
// the gonum road network, MQTT vehicle orders, dispatch log stores
// and the Prometheus and InfluxDB metrics sinks. Nothing under core
// imports these packages; they are wired together in app.
package infra
