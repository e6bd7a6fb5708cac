package entity

import "errors"

var (
	// ErrImageDecode входные байты не являются изображением. Единственная ошибка,
	// которая пробрасывается вызывающему из конвейера сохранения лица.
	ErrImageDecode = errors.New("image decode failed")
	// ErrEmptyImage изображение без пикселей
	ErrEmptyImage = errors.New("empty image")
	// ErrNoFace детектор не нашёл лицо
	ErrNoFace = errors.New("no face found")
	// ErrMalformedResponse внешняя модель вернула неразбираемые данные
	ErrMalformedResponse = errors.New("malformed response")
	// ErrCapabilityUnavailable внешняя модель недоступна или не настроена
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	// ErrGenerationFailed генерация не вернула ни одного кандидата
	ErrGenerationFailed = errors.New("generation failed")
	// ErrSegmentationMismatch сегментация построена для другого изображения
	ErrSegmentationMismatch = errors.New("segmentation does not match image")
	// ErrDimensionMismatch размеры маски не совпадают с исходником
	ErrDimensionMismatch = errors.New("mask dimensions do not match source")
)
