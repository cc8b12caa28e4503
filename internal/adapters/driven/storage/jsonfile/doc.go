// Package jsonfile implements the library store on a directory of JSON
// files: a library.json index of document records, one entries file per
// document and one text file per saved analysis output.
//
// # Layout
//
//	<dataDir>/library.json             index of document records
//	<dataDir>/doc_<id>_entries.json    entries of document <id>
//	<dataDir>/output_<id>.txt          full text of analysis output <id>
//
// # Thread Safety
//
// A single mutex serialises every operation, so overlapping writers
// resolve one after the other instead of overwriting each other's index.
// Files are written to a temporary name and renamed into place, so a
// crash mid-write never leaves a half-written library behind.
package jsonfile
