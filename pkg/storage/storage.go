package storage

import (
	"mime/multipart"
)

// ImageRef identifies an uploaded image: the public URL and the
// store-unique filename used to detach it later.
type ImageRef struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// MediaStore abstracts where uploaded images live.
type MediaStore interface {
	Upload(file *multipart.FileHeader, folder string) (ImageRef, error)
	Delete(url string) error
}
