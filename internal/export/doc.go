// Package export writes assembled view tables for the rendering side:
// Arrow IPC streams for columnar clients, CSV for spreadsheets and aligned
// text tables for terminals.
package export
