// Package cmd implements the npk command line.
//
// Commands are grouped into extraction (unpack, xapk, nxs) and analysis
// (inspect, scan). Every command logs through a charm log handler wrapped in
// slog; --verbose lowers the level to debug.
package cmd
