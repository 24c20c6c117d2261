// Package domain holds the deterministic geometry of a timer key face.
package domain

import (
	"fmt"
	"image/color"
)

const (
	CanvasSize = 144
	CenterX    = CanvasSize / 2

	DotRadius  = 6
	DotSpacing = 14
	DotBaseY   = 100
	MaxDots    = 3
)

var (
	AccentRunning = color.RGBA{R: 0x58, G: 0x81, B: 0xe0, A: 0xff}
	AccentPaused  = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
	Clear         = color.RGBA{A: 0xff}

	dotColors = [MaxDots]color.RGBA{
		{R: 0x3d, G: 0x6e, B: 0xe0, A: 0xff},
		{R: 0x16, G: 0x2a, B: 0x52, A: 0xff},
		{R: 0x0f, G: 0x1d, B: 0x35, A: 0xff},
	}
)

// RemainingText formats goal-elapsed as MM:SS, or H:MM:SS once the goal
// reaches an hour.
func RemainingText(elapsedSec, goalSec int) string {
	total := goalSec - elapsedSec
	hours := total / 3600
	mins := (total % 3600) / 60
	secs := total % 60
	if goalSec < 3600 {
		return fmt.Sprintf("%02d:%02d", mins, secs)
	}
	return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
}

func RemainingFontSize(textLen int) float64 {
	if textLen <= 5 {
		return 38
	}
	if textLen > 7 {
		return 32 - float64(textLen)/2
	}
	return 32
}

func RoundFontSize(round int) float64 {
	if round <= 9 {
		return 23
	}
	return 21
}

func TextColor(running bool) color.RGBA {
	if running {
		return AccentRunning
	}
	return AccentPaused
}

// RemainingY is the vertical middle of the remaining-time line.
func RemainingY(remainingSize float64) float64 {
	return (CanvasSize+remainingSize/3)/2 + 4
}

// RoundY sits the round label directly above the remaining-time line.
func RoundY(remainingSize, roundSize float64) float64 {
	return RemainingY(remainingSize) - remainingSize + roundSize/3
}

func DotY(remainingSize float64) float64 {
	return DotBaseY + remainingSize/3
}

type Dot struct {
	OffsetX int
	Color   color.RGBA
}

// Dots returns the progress dots for a running timer. The offsets sweep
// 0, +14, 0, -14 with elapsed seconds; trailing dots echo earlier phases and
// the trail ends after the second dot when that dot is off centre.
func Dots(elapsedSec int) []Dot {
	dots := make([]Dot, 0, MaxDots)
	for i := 0; i < MaxDots && i <= elapsedSec; i++ {
		offset := (abs((elapsedSec+3-i)%4-2) - 1) * DotSpacing
		dots = append(dots, Dot{OffsetX: offset, Color: dotColors[i]})
		if i == 1 && offset != 0 {
			break
		}
	}
	return dots
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
