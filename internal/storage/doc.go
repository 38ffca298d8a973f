// Package storage holds profile.BlobStore implementations that do not need a
// Firebase project: the local filesystem and Cloudinary.
package storage
