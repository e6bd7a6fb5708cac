package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"tryon-bot/internal/domain/entity"
)

const defaultMIME = "image/png"

// StripDataURI отрезает заголовок data:image/<type>;base64, и возвращает полезную нагрузку и MIME-тип.
func StripDataURI(s string) (payload, mime string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return s, ""
	}
	header := s[len("data:"):idx]
	mime = strings.TrimSuffix(header, ";base64")
	return s[idx+1:], mime
}

// WithDataURI добавляет заголовок data URI к base64-строке.
func WithDataURI(payload, mime string) string {
	if mime == "" {
		mime = defaultMIME
	}
	return "data:" + mime + ";base64," + payload
}

// DecodeBase64 превращает строку (с заголовком или без) в байты.
func DecodeBase64(s string) ([]byte, string, error) {
	payload, mime := StripDataURI(s)
	payload = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, payload)
	if payload == "" {
		return nil, mime, fmt.Errorf("%w: empty payload", entity.ErrImageDecode)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, mime, fmt.Errorf("%w: base64: %v", entity.ErrImageDecode, err)
		}
	}
	return data, mime, nil
}

// DecodeBytes декодирует байты изображения в NRGBA с началом координат в (0,0).
func DecodeBytes(data []byte) (*image.NRGBA, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", entity.ErrImageDecode, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, format, fmt.Errorf("%w: %w", entity.ErrImageDecode, entity.ErrEmptyImage)
	}
	return imaging.Clone(img), format, nil
}

// DecodeImage декодирует base64-строку (с data URI или без) в изображение.
func DecodeImage(s string) (*image.NRGBA, error) {
	data, _, err := DecodeBase64(s)
	if err != nil {
		return nil, err
	}
	img, _, err := DecodeBytes(data)
	return img, err
}

// DecodeConfig читает только заголовок изображения.
func DecodeConfig(s string) (image.Config, error) {
	data, _, err := DecodeBase64(s)
	if err != nil {
		return image.Config{}, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", entity.ErrImageDecode, err)
	}
	return cfg, nil
}

// EncodePNG кодирует изображение в PNG без потерь и возвращает data URI.
func EncodePNG(img image.Image) (string, error) {
	data, err := EncodePNGBytes(img)
	if err != nil {
		return "", err
	}
	return WithDataURI(base64.StdEncoding.EncodeToString(data), "image/png"), nil
}

// EncodePNGBytes кодирует изображение в PNG.
func EncodePNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// MIMEForFormat сопоставляет имя формата из image.Decode и MIME-тип.
func MIMEForFormat(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return defaultMIME
	}
}

// BytesToDataURI кодирует сырые байты изображения в data URI с MIME-типом по сигнатуре формата.
func BytesToDataURI(data []byte) string {
	mime := "image/jpeg"
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		mime = MIMEForFormat(format)
	}
	return WithDataURI(base64.StdEncoding.EncodeToString(data), mime)
}
