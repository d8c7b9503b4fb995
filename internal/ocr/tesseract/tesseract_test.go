package tesseract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pavelanni/dreamroute/internal/ocr"
)

func TestFallbackTokens(t *testing.T) {
	text := "Math 100 85\n\n  Science 100 90 \n"

	assert.Equal(t, []string{"Math", "100", "85", "Science", "100", "90"},
		fallbackTokens(text, ocr.GranularityWord))
	assert.Equal(t, []string{"Math 100 85", "Science 100 90"},
		fallbackTokens(text, ocr.GranularityLine))
	assert.Empty(t, fallbackTokens("", ocr.GranularityWord))
}

func TestEngineName(t *testing.T) {
	assert.Equal(t, "tesseract", New().Name())
}
