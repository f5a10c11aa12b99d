package quizpage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Createyourfreeacc/Beook2PDF-sub000/model"
)

// picture is an asset prepared for embedding.
type picture struct {
	key    string
	kind   string
	data   []byte
	width  int
	height int
}

// prepare passes JPEG through and re-encodes every other decodable format as
// 8-bit PNG, which is what the PDF writer embeds reliably.
func prepare(a *model.QuizAsset) (*picture, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(a.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %d: %w", a.ResourceId, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("image %d is empty", a.ResourceId)
	}

	p := &picture{
		key:    fmt.Sprintf("quiz-%d", a.ResourceId),
		width:  cfg.Width,
		height: cfg.Height,
	}

	if format == "jpeg" && cfg.ColorModel != color.CMYKModel {
		p.kind, p.data = "JPG", a.Data
		return p, nil
	}

	img, _, err := image.Decode(bytes.NewReader(a.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %d: %w", a.ResourceId, err)
	}
	rgba := image.NewNRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("failed to encode image %d: %w", a.ResourceId, err)
	}
	p.kind, p.data = "PNG", buf.Bytes()
	return p, nil
}
