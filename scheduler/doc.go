// Package scheduler triggers the daily absence sweep and token garbage
// collection on cron schedules. Jobs call into a Runner, normally the
// attendance service, so tests can drive them directly through RunReconcile
// and RunPurge without waiting on wall-clock time.
package scheduler
