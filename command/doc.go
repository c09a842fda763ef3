// Package command exposes go-command compatible command handlers implementing
// the attendance workflows (token issuance, scan resolution, absence
// reconciliation, operator marking, token purge). Commands are wired by the
// service layer and can be invoked by any transport.
package command
