package inline

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const (
	blankImage = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"
	blankFont  = "data:,"
)

// fontMime maps the media-type tag stored with a font resource.
func fontMime(tag string) string {
	tag = strings.ToLower(tag)
	switch {
	case strings.Contains(tag, "woff2"):
		return "font/woff2"
	case strings.Contains(tag, "woff"):
		return "font/woff"
	case strings.Contains(tag, "ttf"), strings.Contains(tag, "truetype"):
		return "font/ttf"
	case strings.Contains(tag, "otf"), strings.Contains(tag, "opentype"):
		return "font/otf"
	case strings.Contains(tag, "eot"):
		return "application/vnd.ms-fontobject"
	case strings.Contains(tag, "svg"):
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// imageMime prefers the stored tag and sniffs the payload otherwise.
func imageMime(tag string, data []byte) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if strings.HasPrefix(tag, "image/") {
		return tag
	}
	switch tag {
	case "png", "gif", "webp", "bmp", "tiff":
		return "image/" + tag
	case "jpg", "jpeg":
		return "image/jpeg"
	case "svg":
		return "image/svg+xml"
	}
	return http.DetectContentType(data)
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
