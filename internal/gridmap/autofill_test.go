package gridmap

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLuminanceThreshold(t *testing.T) {
	rule := LuminanceThreshold(DefaultLuminanceThreshold)
	assert.Equal(t, Normal(1), rule(color.White))
	assert.Equal(t, Invalid(), rule(color.Black))
	assert.Equal(t, Normal(1), rule(color.Gray{Y: 128}))
	assert.Equal(t, Invalid(), rule(color.Gray{Y: 127}))
}

func TestLuminanceThreshold_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 500; i++ {
		th := float64(rng.Intn(256))
		y := uint8(rng.Intn(256))
		got := LuminanceThreshold(th)(color.Gray{Y: y})
		if float64(y) >= th {
			require.Equal(t, KindNormal, got.Kind, "y=%d th=%v", y, th)
		} else {
			require.Equal(t, KindInvalid, got.Kind, "y=%d th=%v", y, th)
		}
	}
}

func TestLuminanceThreshold_GreyAtThreshold(t *testing.T) {
	for y := 0; y < 256; y++ {
		grey := color.Gray{Y: uint8(y)}
		assert.Equal(t, float64(y), Luma(grey), "luma of grey %d", y)
		assert.Equal(t, KindNormal, LuminanceThreshold(float64(y))(grey).Kind, "grey %d at its own threshold", y)
		if y < 255 {
			assert.Equal(t, KindInvalid, LuminanceThreshold(float64(y+1))(grey).Kind, "grey %d below threshold", y)
		}
	}
}

func TestColorMatch(t *testing.T) {
	free := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	rule := ColorMatch(free, DefaultColorTolerance)
	assert.Equal(t, Normal(1), rule(free))
	assert.Equal(t, Normal(1), rule(color.RGBA{R: 205, G: 104, B: 50, A: 255}))
	assert.Equal(t, Invalid(), rule(color.RGBA{R: 210, G: 100, B: 50, A: 255}), "distance 10 is outside")
	assert.Equal(t, Invalid(), rule(color.Black))
}

func checker(w, h, square int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/square+y/square)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestAutoFill_SamplesCellCentres(t *testing.T) {
	img := checker(40, 20, 10)
	m, _ := New(1, 1)
	require.NoError(t, m.AutoScale(40, 20, 10))
	require.NoError(t, m.AutoFill(img, LuminanceThreshold(DefaultLuminanceThreshold)))
	assert.Equal(t, " X X\nX X \n", m.String())
}

func TestAutoFill_Deterministic(t *testing.T) {
	img := checker(64, 48, 3)
	rule := LuminanceThreshold(100)
	a, _ := New(1, 1)
	b, _ := New(1, 1)
	require.NoError(t, a.AutoScale(64, 48, 4))
	require.NoError(t, b.AutoScale(64, 48, 4))
	require.NoError(t, a.AutoFill(img, rule))
	require.NoError(t, b.AutoFill(img, rule))
	assert.True(t, a.Equal(b))
}

func TestAutoFill_OutsideImageIsInvalid(t *testing.T) {
	img := image.NewUniform(color.White)
	bounded := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := range bounded.Pix {
		bounded.Pix[i] = 0xff
	}
	m, _ := NewFilled(3, 3, Normal(1))
	require.NoError(t, m.SetPixelsPerCell(5))
	require.NoError(t, m.AutoFill(bounded, LuminanceThreshold(128)))
	assert.Equal(t, "  X\n  X\nXXX\n", m.String())

	require.NoError(t, m.AutoFill(img, LuminanceThreshold(128)))
	assert.Equal(t, "   \n   \n   \n", m.String())
	assert.ErrorIs(t, m.AutoFill(nil, LuminanceThreshold(128)), ErrNoBackground)
}
