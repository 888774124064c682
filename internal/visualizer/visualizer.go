// Package visualizer turns a live sample stream into a character-grid
// spectrum: a shared sample ring, a smoothed spectrum stage, a bounded
// canvas and the bar renderer that maps columns to bins.
package visualizer
