package domain

// LibraryStats summarises the document library.
type LibraryStats struct {
	// Documents is the total number of records in the index.
	Documents int

	// ByClass counts documents per lifecycle class.
	ByClass map[DocumentClass]int

	// ByType counts documents per ingestion type.
	ByType map[string]int

	// Entries is the total number of entries across all documents.
	Entries int

	// Outputs is the total number of saved analysis outputs.
	Outputs int
}
