// Package cli assembles the spinup root command, its configuration loading, and logging.
package cli
