package model

import "io"

// ImageUpload is an already processed image ready to be stored.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

type PreviewOptions struct {
	Width   int
	Height  int
	Gravity string
	Quality int
}
