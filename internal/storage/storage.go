// Package storage abstracts image upload backends. Uploaded files are
// referenced by URL in user profiles and posts.
package storage

import "mime/multipart"

// FileStorage saves an uploaded file and returns the URL it is served from
type FileStorage interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
}
