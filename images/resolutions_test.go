package images

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionMegaPixels(t *testing.T) {
	testCases := []struct {
		name     string
		res      Resolution
		expected float64
	}{
		{name: "Full HD 1080p", res: Resolution{Width: 1920, Height: 1080}, expected: 2.07},
		{name: "4K UHD", res: Resolution{Width: 3840, Height: 2160}, expected: 8.29},
		{name: "zero width", res: Resolution{Width: 0, Height: 1080}, expected: 0},
		{name: "negative height", res: Resolution{Width: 1920, Height: -1}, expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, tc.res.MegaPixels(), 1e-9)
		})
	}
}

func TestResolutionString(t *testing.T) {
	assert.Equal(t, "HD 720p (1280x720, 0.92MP)", Resolutions[3].String())
}

func TestResolutionsOrdered(t *testing.T) {
	for i := 1; i < len(Resolutions); i++ {
		assert.Greater(t, Resolutions[i].MegaPixels(), Resolutions[i-1].MegaPixels(), Resolutions[i].Name)
	}
}

func TestClassifyResolution(t *testing.T) {
	testCases := []struct {
		width, height int
		want          string
		found         bool
	}{
		{1920, 1080, "Full HD 1080p", true},
		{1080, 1920, "Full HD 1080p", true},
		{1919, 1080, "HD 720p", true},
		{640, 480, "nHD", true},
		{4000, 3000, "4K UHD", true},
		{320, 240, "", false},
	}
	for _, tc := range testCases {
		res, ok := ClassifyResolution(tc.width, tc.height)
		require.Equal(t, tc.found, ok, "%dx%d", tc.width, tc.height)
		assert.Equal(t, tc.want, res.Name, "%dx%d", tc.width, tc.height)
	}
}

func TestQualityHints(t *testing.T) {
	assert.Empty(t, QualityHints(image.Rect(0, 0, 1920, 1080)))
	assert.Empty(t, QualityHints(image.Rect(0, 0, 720, 1280)))

	hints := QualityHints(image.Rect(0, 0, 640, 480))
	require.Len(t, hints, 1)
	assert.Contains(t, hints[0], "640x480")

	assert.Len(t, QualityHints(image.Rect(0, 0, 4000, 500)), 2)
}
