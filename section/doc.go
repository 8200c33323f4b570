// Package section defines the byte layout of a monthly structure data file and
// the routines that read it.
//
// A data file is a header followed by one fixed-size data block per structure:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Counts (5 × 4 bytes)                                    │
//	│  - structures, time steps, structure variables,         │
//	│    time-series variables, annual time-series steps      │
//	├─────────────────────────────────────────────────────────┤
//	│ Structure variable descriptors (N × 93 bytes)           │
//	│  - type(1) length(4) name(24) report(4) header(60)      │
//	├─────────────────────────────────────────────────────────┤
//	│ Time-series variable descriptors (N × 43 bytes)         │
//	│  - type(1) length(4) name(24) report(4) units(10)       │
//	├─────────────────────────────────────────────────────────┤
//	│ Catalog (structures × sum of structure var lengths)     │
//	├─────────────────────────────────────────────────────────┤
//	│ Block 0: time steps × record                            │
//	│ Block 1: time steps × record                            │
//	│ ...                                                     │
//	└─────────────────────────────────────────────────────────┘
//
// A record holds one value of every time-series variable, in descriptor order.
// Blocks are not necessarily written in catalog order: the "Structure Index"
// value stored in each record names the catalog row the block belongs to, and
// ResolveOrder builds the catalog-to-block permutation from it.
//
// All numeric fields are little-endian. Text fields are fixed width and space
// padded. Field widths are described by Widths and default to the values above.
package section
