// Package app provides the application services behind the CLI commands.
// Each service coordinates domain rules and adapters through port
// interfaces; the services that change files run as use cases through the
// lifecycle runner so failures are rolled back and observed.
package app
