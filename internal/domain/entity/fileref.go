package entity

// FileRef is the source document behind an invoice record. A record created
// at upload time carries a LiveFile; a record rehydrated from storage carries
// a PlaceholderFile, which cannot be re-processed without a fresh upload.
type FileRef interface {
	Name() string
	MediaType() string
	Size() int64
}

// LiveFile holds the uploaded document bytes.
type LiveFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

func (f *LiveFile) Name() string      { return f.FileName }
func (f *LiveFile) MediaType() string { return f.ContentType }
func (f *LiveFile) Size() int64       { return int64(len(f.Data)) }

// PlaceholderFile stands in for a document whose bytes were not persisted.
// Size is always zero, so the pipeline's precondition check rejects it.
type PlaceholderFile struct {
	FileName    string
	ContentType string
}

func (f *PlaceholderFile) Name() string      { return f.FileName }
func (f *PlaceholderFile) MediaType() string { return f.ContentType }
func (f *PlaceholderFile) Size() int64       { return 0 }
