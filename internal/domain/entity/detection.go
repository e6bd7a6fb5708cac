package entity

// DetectionKind тип результата детекции лица
type DetectionKind int

const (
	DetectionNotFound  DetectionKind = iota // лицо не найдено
	DetectionDetected                       // лицо найдено
	DetectionMalformed                      // ответ детектора не удалось разобрать
)

func (k DetectionKind) String() string {
	switch k {
	case DetectionDetected:
		return "detected"
	case DetectionMalformed:
		return "malformed"
	default:
		return "not_found"
	}
}

// Detection закрытый результат анализа: Detected(FaceRegion) | NotFound | Malformed.
type Detection struct {
	Kind   DetectionKind
	Region FaceRegion
	Source string // имя адаптера, выдавшего результат
	Reason string // причина для NotFound / Malformed
}

// Detected создаёт успешный результат.
func Detected(source string, region FaceRegion) Detection {
	return Detection{Kind: DetectionDetected, Region: region, Source: source}
}

// NotFound создаёт результат "лицо не найдено".
func NotFound(source, reason string) Detection {
	return Detection{Kind: DetectionNotFound, Source: source, Reason: reason}
}

// Malformed создаёт результат "ответ не разобран".
func Malformed(source, reason string) Detection {
	return Detection{Kind: DetectionMalformed, Source: source, Reason: reason}
}

// Found сообщает, найдено ли лицо
func (d Detection) Found() bool {
	return d.Kind == DetectionDetected
}
