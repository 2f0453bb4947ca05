package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

// QRService provides QR code generation functionality
type QRService struct {
	logger *logrus.Logger
}

// NewQRService creates a new QR code service
func NewQRService(logger *logrus.Logger) *QRService {
	return &QRService{logger: logger}
}

// Generate renders the given link as a PNG QR code
func (s *QRService) Generate(link string) ([]byte, error) {
	if link == "" {
		return nil, errors.New("nothing to encode")
	}

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		s.logger.Errorf("Failed to generate QR code: %v", err)
		return nil, err
	}
	return png, nil
}
