package plotter

import (
	"hash/crc32"
	"image/color"
	"strconv"
)

var palette = []color.RGBA{
	{247, 10, 10, 255},
	{6, 245, 34, 255},
	{26, 160, 253, 255},
	{247, 127, 10, 255},
	{247, 21, 223, 255},
	{244, 251, 18, 255},
	{64, 216, 140, 255},
	{105, 20, 253, 255},
}

// LineColor picks the colour of the i-th line in a plot. Lines past the
// palette get a colour derived from their index.
func LineColor(i int) color.RGBA {
	if i >= 0 && i < len(palette) {
		return palette[i]
	}
	return hashToRGB("line" + strconv.Itoa(i))
}

func hashToRGB(input string) color.RGBA {
	hash := crc32.ChecksumIEEE([]byte(input))
	return color.RGBA{byte(hash >> 8), byte(hash >> 16), byte(hash), 255}
}
