// Package models contains domain types for the analysis pipeline.
package models

// UploadedFile is one uploaded document held in memory for the duration of a request.
type UploadedFile struct {
	Filename string
	Data     []byte
}

// DocumentText is the text extracted from one uploaded file.
type DocumentText struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}
