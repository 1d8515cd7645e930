package pose

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
)

var (
	keypointColor = color.RGBA{R: 0, G: 220, B: 90, A: 255}
	skeletonColor = color.RGBA{R: 255, G: 200, B: 0, A: 255}
)

// Annotate renders the observation's keypoints and skeleton on top of the
// frame and returns it as a base64 JPEG data URI. With a nil observation the
// plain frame is returned, so clients still get their preview.
func Annotate(img image.Image, observation *Observation) (string, error) {
	canvas := image.NewRGBA(img.Bounds())
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)

	if observation != nil {
		for _, pair := range skeleton {
			from, okFrom := observation.Keypoint(pair[0])
			to, okTo := observation.Keypoint(pair[1])
			if okFrom && okTo {
				drawSegment(canvas, from, to, skeletonColor)
			}
		}
		for _, kp := range observation.Keypoints {
			drawDot(canvas, int(kp.X), int(kp.Y), 3, keypointColor)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, nil); err != nil {
		return "", fmt.Errorf("encode annotated frame: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func drawDot(canvas *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				setIfInBounds(canvas, cx+dx, cy+dy, c)
			}
		}
	}
}

// drawSegment draws a line between two keypoints (Bresenham).
func drawSegment(canvas *image.RGBA, from, to Point2D, c color.RGBA) {
	x0, y0 := int(from.X), int(from.Y)
	x1, y1 := int(to.X), int(to.Y)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		setIfInBounds(canvas, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func setIfInBounds(canvas *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(canvas.Bounds()) {
		canvas.SetRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
