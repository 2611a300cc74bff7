package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var gstinShapeRe = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)

// ValidateGSTIN checks a GSTIN against the registration-number shape. It does
// not verify the checksum digit.
func ValidateGSTIN(gstin string) error {
	if !gstinShapeRe.MatchString(gstin) {
		return fmt.Errorf("invalid GSTIN format: %s", gstin)
	}
	return nil
}

// ValidatePDFFilename checks an uploaded filename for a .pdf extension.
func ValidatePDFFilename(name string) error {
	if strings.ToLower(filepath.Ext(name)) != ".pdf" {
		return fmt.Errorf("unsupported file type: %s", name)
	}
	return nil
}

// SanitizeFilename strips path separators and control characters so an
// uploaded name is safe to join into a storage path.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	sanitized := regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(name, "")
	return strings.ReplaceAll(sanitized, "..", "")
}
