// Package api defines the FileService wire contract shared by the server and
// the client: message types, the gRPC service descriptor and a JSON codec.
package api

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// FileInfo is the metadata record of a stored file.
type FileInfo struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Hash        string `json:"hash"`
	Size        int64  `json:"size"`
}

type GetFileInfoByIDRequest struct {
	ID string `json:"id"`
}

type GetFileInfoByHashRequest struct {
	Hash string `json:"hash"`
}

// UploadMeta opens an upload stream. Title, Author and Categories are
// descriptive and logged only.
type UploadMeta struct {
	FileName    string   `json:"file_name"`
	ContentType string   `json:"content_type"`
	Size        int64    `json:"size"`
	Title       string   `json:"title,omitempty"`
	Author      string   `json:"author,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

// UploadRequest is one message of the Upload stream. The first message
// carries Meta and no data, every following one carries a chunk.
type UploadRequest struct {
	Meta  *UploadMeta `json:"meta,omitempty"`
	Chunk []byte      `json:"chunk,omitempty"`
}

type DownloadRequest struct {
	ID string `json:"id"`
}

type DownloadChunk struct {
	Data []byte `json:"data"`
}
