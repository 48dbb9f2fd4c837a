// Package engine is the composition root of ULTIMA. It builds the provider
// wrappers from configuration, answers status reports, and dispatches
// generation requests either to a named provider or, in auto mode, to the
// first provider in priority order that returns text. Frontends (the CLI and
// the MCP server) talk to Engine and observe activity through an EventBus.
package engine
