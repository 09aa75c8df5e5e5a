// Package ports defines interfaces between layers in the hexagonal architecture.
// Service ports are implemented by the application layer and called by the CLI.
// Driven ports (parser, process runner, stub store, prompter, layer resolver)
// are implemented by outbound adapters and called by the application layer.
package ports
