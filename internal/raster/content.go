package raster

import (
	"image"
	"math"

	"tryon-bot/internal/domain/entity"
)

// Пороги проверки содержимого.
const (
	minMeanBrightness = 10
	darkPixelLuma     = 16
	maxDarkShare      = 0.90
	minStdDev         = 3
)

// Тексты замечаний проверки содержимого.
const (
	IssueNearZeroBrightness = "near-zero brightness"
	IssuePredominantlyBlack = "predominantly black"
	IssueNearZeroVariance   = "near-zero pixel variance"
	IssueDecodeFailed       = "decode failed"
)

// ValidateContent грубая проверка, отсекающая заведомо сломанный вывод модели:
// почти чёрное изображение или изображение без разброса яркости.
func ValidateContent(img image.Image) entity.ContentReport {
	b := img.Bounds()
	n := float64(b.Dx() * b.Dy())
	if n == 0 {
		return entity.ContentReport{Issues: []string{IssueDecodeFailed}}
	}

	var sum, sumSq float64
	var dark int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			l := luma(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			sum += l
			sumSq += l * l
			if l < darkPixelLuma {
				dark++
			}
		}
	}
	mean := sum / n
	std := math.Sqrt(math.Max(0, sumSq/n-mean*mean))

	report := entity.ContentReport{MeanBrightness: mean, StdDev: std, Issues: []string{}}
	if mean < minMeanBrightness {
		report.Issues = append(report.Issues, IssueNearZeroBrightness)
	}
	if float64(dark)/n > maxDarkShare {
		report.Issues = append(report.Issues, IssuePredominantlyBlack)
	}
	if std < minStdDev {
		report.Issues = append(report.Issues, IssueNearZeroVariance)
	}
	report.IsValid = len(report.Issues) == 0
	return report
}

// ValidateImageContent то же для base64-строки. Ошибка декодирования даёт невалидный отчёт.
func ValidateImageContent(s string) entity.ContentReport {
	img, err := DecodeImage(s)
	if err != nil {
		return entity.ContentReport{Issues: []string{IssueDecodeFailed}}
	}
	return ValidateContent(img)
}

func luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
