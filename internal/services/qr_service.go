package services

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"
)

// QRService renders checkout links as PNG QR codes so a player on a desktop
// can finish paying on their phone.
type QRService struct {
	size int
}

func NewQRService() *QRService {
	return &QRService{size: 256}
}

// Encode returns the base64 PNG for content.
func (s *QRService) Encode(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, s.size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
