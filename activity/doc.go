// Package activity persists attendance activity records as an audit log and
// fans records out to several sinks (for example the database plus NATS).
package activity
