// Package logx is pollcaster's structured logger, a thin layer over zerolog.
//
// Console output is human-readable with a short caller; the optional file
// sink writes one JSON object per line. Console logs go to stderr so command
// output on stdout stays clean.
package logx
