// Package imaging implements the profile picture cropper and the pieces it
// is assembled from.
//
// A crop runs as a single pipeline: decode the source, validate the region,
// copy the region onto a fresh raster surface, encode the surface as JPEG at
// quality 100 and register the bytes under a "blob:" handle. Each stage has
// its own collaborator so the pipeline can run headless in tests:
//
//   - Decoder (Loader by default) resolves references to pixels
//   - SurfaceFactory (RasterFactory by default) allocates surfaces
//   - BlobRegistry owns the encoded output until the caller revokes it
//
// RenderPreview and Cropper.Preview draw a pending region over the source
// without cropping it, for checking a region before committing to it.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner of the
// image, X increasing rightward and Y downward. A CropRegion is given as its
// top-left corner plus width and height; the covered pixels are
// [X, X+Width) x [Y, Y+Height).
//
// # Error Handling
//
// Crop failures carry a concrete type that matches one kind through
// errors.Is:
//   - *DecodeError (ErrDecode): unreadable, unreachable or malformed source
//   - *InvalidRegionError (ErrInvalidRegion): region outside the image or empty
//   - *SurfaceUnavailableError (ErrSurfaceUnavailable): surface too large
//   - *EncodeError (ErrEncode): JPEG encoding failed or produced nothing
//
// Cancellation is reported as the context's own error.
//
// # Ownership
//
// Surfaces are released by the cropper before Crop returns. Encoded resources
// belong to the caller, who releases them with Cropper.Release or
// BlobRegistry.Revoke; nothing is released automatically.
package imaging
