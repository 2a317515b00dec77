// Package notifier announces the start of a new Hijri month.
//
// An announcement is produced only when a fetch replaces a stored record of a
// different month. It can be printed (dry run) or posted as JSON to a webhook
// such as a Slack or Discord incoming hook.
package notifier
