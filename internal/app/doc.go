// Package app wires a batch together: it loads the grid, selects an executor,
// opens the log directory, attaches progress observers and serves health and
// metrics endpoints while the run controller works through the combinations.
// It is decoupled from the command line, which only builds a Config.
package app
