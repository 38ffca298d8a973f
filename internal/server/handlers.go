package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/avatar-tools-mcp/internal/imaging"
	"github.com/ironsheep/avatar-tools-mcp/internal/profile"
)

// errProfilesDisabled is returned by profile_* tools when the server runs
// without a profile service.
var errProfilesDisabled = errors.New("profile tools are not configured")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_crop").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// The error data carries the error string and, for crop and profile
// failures, a machine-readable kind.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", zap.String("tool", params.Name), zap.Error(err))
		data := map[string]interface{}{"error": err.Error()}
		if kind := errorKind(err); kind != "" {
			data["kind"] = kind
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", data)
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_load":
		return s.handleImageLoad(ctx, args)
	case "image_crop":
		return s.handleImageCrop(ctx, args)
	case "image_crop_named":
		return s.handleImageCropNamed(ctx, args)
	case "image_crop_preview":
		return s.handleImageCropPreview(ctx, args)
	case "image_resource_get":
		return s.handleResourceGet(args)
	case "image_resource_revoke":
		return s.handleResourceRevoke(args)
	case "image_sample_color":
		return s.handleImageSampleColor(ctx, args)
	case "image_verify_crop":
		return s.handleImageVerifyCrop(ctx, args)
	case "profile_get":
		return s.handleProfileGet(ctx, args)
	case "profile_update_picture":
		return s.handleProfileUpdatePicture(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

func errorKind(err error) string {
	if kind := imaging.ErrorKind(err); kind != "" {
		return kind
	}
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return "not_found"
	case errors.Is(err, profile.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, profile.ErrInvalidUID):
		return "invalid_uid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return ""
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type regionArgs struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r regionArgs) region() imaging.CropRegion {
	return imaging.CropRegion{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// === Image Handlers ===

type imageLoadArgs struct {
	Source string `json:"source"`
}

func (s *Server) handleImageLoad(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.loader.LoadImageInfo(ctx, a.Source)
}

type imageCropArgs struct {
	Source string `json:"source"`
	regionArgs
}

func (s *Server) handleImageCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.cropper.Crop(ctx, imaging.SourceRef(a.Source), a.region())
}

type imageCropNamedArgs struct {
	Source string `json:"source"`
	Region string `json:"region"`
}

func (s *Server) handleImageCropNamed(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageCropNamedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.cropper.CropNamed(ctx, imaging.SourceRef(a.Source), a.Region)
}

type imageCropPreviewArgs struct {
	Source          string `json:"source"`
	ShowGrid        *bool  `json:"show_grid"`
	ShowCoordinates bool   `json:"show_coordinates"`
	Color           string `json:"color"`
	regionArgs
}

func (s *Server) handleImageCropPreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageCropPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := imaging.PreviewOptions{
		ShowGrid:        a.ShowGrid == nil || *a.ShowGrid,
		ShowCoordinates: a.ShowCoordinates,
		Color:           a.Color,
	}
	return s.cropper.Preview(ctx, imaging.SourceRef(a.Source), a.region(), opts)
}

type resourceArgs struct {
	URL string `json:"url"`
}

type resourceData struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int    `json:"size"`
	Data     string `json:"data"`
}

func (s *Server) handleResourceGet(args json.RawMessage) (interface{}, error) {
	var a resourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	data, mimeType, err := s.cropper.Blobs().Resolve(a.URL)
	if err != nil {
		return nil, err
	}
	return &resourceData{
		URL:      a.URL,
		MimeType: mimeType,
		Size:     len(data),
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

func (s *Server) handleResourceRevoke(args json.RawMessage) (interface{}, error) {
	var a resourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"url":     a.URL,
		"revoked": s.cropper.Blobs().Revoke(a.URL),
	}, nil
}

type imageSampleColorArgs struct {
	Source string `json:"source"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

func (s *Server) handleImageSampleColor(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loader.Decode(ctx, a.Source)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

type imageVerifyCropArgs struct {
	Source    string `json:"source"`
	Cropped   string `json:"cropped"`
	Tolerance *int   `json:"tolerance"`
	regionArgs
}

func (s *Server) handleImageVerifyCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageVerifyCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	tolerance := imaging.DefaultCompareTolerance
	if a.Tolerance != nil {
		tolerance = *a.Tolerance
	}

	src, err := s.loader.Decode(ctx, a.Source)
	if err != nil {
		return nil, err
	}
	cropped, err := s.loader.Decode(ctx, a.Cropped)
	if err != nil {
		return nil, err
	}
	return imaging.CompareCrop(src, a.region(), cropped, tolerance)
}

// === Profile Handlers ===

type identityArgs struct {
	UID     string `json:"uid"`
	IDToken string `json:"id_token"`
}

func (s *Server) handleProfileGet(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.profiles == nil {
		return nil, errProfilesDisabled
	}
	var a identityArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	uid, err := s.profiles.ResolveUID(ctx, a.UID, a.IDToken)
	if err != nil {
		return nil, err
	}
	return s.profiles.Get(ctx, uid)
}

type profileUpdatePictureArgs struct {
	identityArgs
	Source string `json:"source"`
	regionArgs
}

func (s *Server) handleProfileUpdatePicture(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.profiles == nil {
		return nil, errProfilesDisabled
	}
	var a profileUpdatePictureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	uid, err := s.profiles.ResolveUID(ctx, a.UID, a.IDToken)
	if err != nil {
		return nil, err
	}
	url, err := s.profiles.UpdatePicture(ctx, uid, imaging.SourceRef(a.Source), a.region())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"uid":        uid,
		"profilePic": url,
	}, nil
}
