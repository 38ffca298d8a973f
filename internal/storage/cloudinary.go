package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads pictures to a Cloudinary account. The object path is
// split into a folder and a public ID, so profile-pics/{uid}/{ms}.jpg lands
// in folder profile-pics/{uid} as {ms}.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary creates an uploader for cloudName authenticated with the API
// key pair.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	if cloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud_name is not configured")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

// Put implements profile.BlobStore and returns the secure delivery URL.
func (c *Cloudinary) Put(ctx context.Context, objectPath string, data []byte, _ string) (string, error) {
	folder, publicID := splitObjectPath(objectPath)
	result, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID: publicID,
		Folder:   folder,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}

// Delete implements profile.BlobStore. An asset Cloudinary reports as
// "not found" counts as deleted.
func (c *Cloudinary) Delete(ctx context.Context, objectPath string) error {
	folder, publicID := splitObjectPath(objectPath)
	if folder != "" {
		publicID = folder + "/" + publicID
	}
	result, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete from cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return fmt.Errorf("cloudinary rejected delete: %s", result.Error.Message)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary delete of %s: %s", publicID, result.Result)
	}
	return nil
}

func splitObjectPath(objectPath string) (folder, publicID string) {
	dir, file := path.Split(objectPath)
	return strings.TrimSuffix(dir, "/"), strings.TrimSuffix(file, path.Ext(file))
}
