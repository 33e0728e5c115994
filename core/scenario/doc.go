// Package scenario decodes simulation scenarios: the road graph, hospitals,
// stations, initial fleet and the list of emergency calls. Definitions load
// from YAML or JSON and convert to the inputs of the dispatch engine.
package scenario
