// Package qrcode renders QR codes for printed documents.
package qrcode

import (
	"encoding/base64"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

// DataURI encodes data as a size x size PNG QR code, ready for an img src.
func DataURI(data string, size int) (string, error) {
	png, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		return "", errors.Wrap(err, "encode qr code")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
