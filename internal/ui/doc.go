// Package ui renders command lifecycle progress for interactive runs.
package ui
