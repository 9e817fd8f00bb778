// Package infra holds the adapters behind the core interfaces: the MQTT
// subscriber and publisher, the metric recorders and the zerolog logger.
package infra
