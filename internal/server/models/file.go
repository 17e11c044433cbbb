// Package models defines the server-side data model.
package models

// FileRecord describes one stored file. ID never changes once assigned; an
// overwrite only replaces Hash and Size.
type FileRecord struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Hash        string `json:"hash"`
	Size        int64  `json:"size"`
}

// Clone returns a copy that the caller may modify freely.
func (r *FileRecord) Clone() *FileRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
