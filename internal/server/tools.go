package server

import "strings"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var sourceProperty = map[string]interface{}{
	"type":        "string",
	"description": "Image source: file path, file:// or http(s):// URL, data: URL, or a blob: handle returned by a crop",
}

func integerProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func regionProperties() map[string]interface{} {
	return map[string]interface{}{
		"x":      integerProperty("Left edge X coordinate in source pixels (0-based)"),
		"y":      integerProperty("Top edge Y coordinate in source pixels (0-based)"),
		"width":  integerProperty("Crop width in pixels (> 0)"),
		"height": integerProperty("Crop height in pixels (> 0)"),
	}
}

func identityProperties() map[string]interface{} {
	return map[string]interface{}{
		"uid": map[string]interface{}{
			"type":        "string",
			"description": "User ID. Accepted without a token only when unverified access is enabled",
		},
		"id_token": map[string]interface{}{
			"type":        "string",
			"description": "Firebase ID token; when present it decides the user",
		},
	}
}

func merge(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Decode an image source and return its dimensions, format, colour depth and encoded size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": sourceProperty,
				},
				"required": []string{"source"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Crop an exact rectangle out of an image without scaling and encode it as JPEG (quality 100). Returns a blob: handle that must be revoked with image_resource_revoke when no longer needed.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": merge(map[string]interface{}{"source": sourceProperty}, regionProperties()),
				"required":   []string{"source", "x", "y", "width", "height"},
			},
		},
		{
			Name:        "image_crop_named",
			Description: "Crop a named region (quadrant, half, center, or center-square for a 1:1 avatar) and encode it as JPEG. Returns a blob: handle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": sourceProperty,
					"region": map[string]interface{}{
						"type": "string",
						"enum": []string{
							"top-left", "top-right", "bottom-left", "bottom-right",
							"top-half", "bottom-half", "left-half", "right-half",
							"center", "center-square",
						},
						"description": "Named region to extract",
					},
				},
				"required": []string{"source", "region"},
			},
		},
		{
			Name:        "image_crop_preview",
			Description: "Render the source with a crop region outlined and the surrounding area shaded, as a PNG blob: handle. Use it to check a region before cropping.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(map[string]interface{}{
					"source": sourceProperty,
					"show_grid": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw rule-of-thirds lines inside the region",
						"default":     true,
					},
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label the region corners with pixel coordinates",
						"default":     false,
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as #rrggbb. Default #ffffff",
					},
				}, regionProperties()),
				"required": []string{"source", "x", "y", "width", "height"},
			},
		},
		{
			Name:        "image_resource_get",
			Description: "Return the encoded bytes behind a blob: handle as base64.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"url": map[string]interface{}{
						"type":        "string",
						"description": "blob: handle returned by a crop",
					},
				},
				"required": []string{"url"},
			},
		},
		{
			Name:        "image_resource_revoke",
			Description: "Release a blob: handle. Revoking an unknown or already revoked handle is harmless.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"url": map[string]interface{}{
						"type":        "string",
						"description": "blob: handle to release",
					},
				},
				"required": []string{"url"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color at a pixel as hex, RGBA and HSL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"source": sourceProperty,
					"x":      integerProperty("X coordinate"),
					"y":      integerProperty("Y coordinate"),
				},
				"required": []string{"source", "x", "y"},
			},
		},
		{
			Name:        "image_verify_crop",
			Description: "Compare a cropped image against the source region it was cut from and report size and per-pixel fidelity.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(map[string]interface{}{
					"source": sourceProperty,
					"cropped": map[string]interface{}{
						"type":        "string",
						"description": "The cropped image, usually the blob: handle returned by image_crop",
					},
					"tolerance": map[string]interface{}{
						"type":        "integer",
						"description": "Allowed per-channel difference (0-255). Default 16",
						"default":     16,
					},
				}, regionProperties()),
				"required": []string{"source", "cropped", "x", "y", "width", "height"},
			},
		},
		{
			Name:        "profile_get",
			Description: "Read a user's profile including the current profile picture URL.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": identityProperties(),
			},
		},
		{
			Name:        "profile_update_picture",
			Description: "Crop a region out of an image, upload it as the user's profile picture and record the download URL on their profile.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": merge(identityProperties(), map[string]interface{}{"source": sourceProperty}, regionProperties()),
				"required":   []string{"source", "x", "y", "width", "height"},
			},
		},
	}
}

func withoutProfileTools(tools []Tool) []Tool {
	out := tools[:0]
	for _, t := range tools {
		if !strings.HasPrefix(t.Name, "profile_") {
			out = append(out, t)
		}
	}
	return out
}
