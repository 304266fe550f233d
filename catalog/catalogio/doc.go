// Package catalogio loads item fixtures from on-disk YAML files in the
// shape the on-disk test library collaborator (out of scope for the
// engine itself) is expected to produce. It exists so engine tests and
// small example programs can build a catalog.Pool from a fixture file
// without hand-writing Go literals for every item.
package catalogio
