package services

import "fmt"

// imageExtension проверяет content-type загружаемой картинки
// и возвращает расширение для ключа в хранилище.
func imageExtension(contentType string) (string, error) {
	switch contentType {
	case "image/png":
		return ".png", nil
	case "image/jpeg":
		return ".jpg", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("%w: unsupported image content type %q", ErrValidationFailed, contentType)
	}
}
