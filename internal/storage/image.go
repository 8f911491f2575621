package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"

	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/util"
)

const (
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"

	DefaultImageWidth  = 300
	DefaultImageHeight = 200
	DefaultAvatarSize  = 200
)

// MsgInvalidImageType is reported for uploads that are neither PNG nor JPEG.
const MsgInvalidImageType = "Invalid image type"

var extensions = map[string]string{
	ContentTypePNG:  ".png",
	ContentTypeJPEG: ".jpg",
}

// DetectContentType sniffs the upload instead of trusting the client header.
// It returns a ValidationErrors for unsupported images.
func DetectContentType(data []byte) (string, error) {
	ct := http.DetectContentType(data)
	if _, ok := extensions[ct]; !ok {
		return "", domain.NewValidationErrors(MsgInvalidImageType)
	}
	return ct, nil
}

// NewObjectName returns "<prefix><ulid><ext>" for a supported content type.
func NewObjectName(prefix, contentType string) (string, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return "", domain.NewValidationErrors(MsgInvalidImageType)
	}
	return prefix + util.NewULID() + ext, nil
}

// palette holds the background colors picked for generated images.
var palette = []color.RGBA{
	{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF},
	{R: 0x05, G: 0x96, B: 0x69, A: 0xFF},
	{R: 0xD9, G: 0x77, B: 0x06, A: 0xFF},
	{R: 0xDC, G: 0x26, B: 0x26, A: 0xFF},
	{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF},
	{R: 0x7C, G: 0x3A, B: 0xED, A: 0xFF},
}

// DefaultImage renders a width x height PNG: a solid background chosen from
// seed with a lighter diagonal band.
func DefaultImage(width, height int, seed string) ([]byte, error) {
	var sum int
	for _, r := range seed {
		sum += int(r)
	}
	bg := palette[sum%len(palette)]
	band := color.RGBA{R: lighten(bg.R), G: lighten(bg.G), B: lighten(bg.B), A: 0xFF}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := bg
			if d := x - y*width/height; d > -width/8 && d < width/8 {
				c = band
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lighten(v uint8) uint8 {
	return v + (0xFF-v)/3
}

// ImageSource yields the bytes to store for an optional upload.
type ImageSource struct {
	ContentType string
	Data        []byte
}

// ResolveUpload validates an upload, or produces the default image when there is none.
func ResolveUpload(upload *domain.ImageUpload, seed string) (ImageSource, error) {
	if upload == nil || len(upload.Data) == 0 {
		data, err := DefaultImage(DefaultImageWidth, DefaultImageHeight, seed)
		if err != nil {
			return ImageSource{}, err
		}
		return ImageSource{ContentType: ContentTypePNG, Data: data}, nil
	}
	ct, err := DetectContentType(upload.Data)
	if err != nil {
		return ImageSource{}, err
	}
	return ImageSource{ContentType: ct, Data: upload.Data}, nil
}
