// Package logging constructs the process-wide slog logger and the structured
// attribute vocabulary shared by every component.
//
// Two output formats exist: a human console format that prefixes lines with
// the component name, and a JSON format with normalized ts/level/msg keys for
// log shippers. Component loggers carry a standardized component attribute;
// context helpers stamp correlation identifiers so every bridge call and
// store operation within one resolution logs under the same id.
package logging
