package app

import (
	"crypto/md5"
	"encoding/hex"

	"tryon-bot/internal/raster"
)

// cacheKey ключ кэша: префикс и md5 полезной нагрузки изображения (без data URI заголовка).
func cacheKey(prefix, image string) string {
	payload, _ := raster.StripDataURI(image)
	sum := md5.Sum([]byte(payload))
	return prefix + hex.EncodeToString(sum[:])
}
