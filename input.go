package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input holds the input edges the game reacts to on a frame.
type Input struct {
	// ClickPressed is true on the frame the left mouse button was pressed.
	ClickPressed bool
	// ClickX/Y are the cursor position in screen pixels at the press.
	ClickX float64
	ClickY float64
	// CopyPressed is true on the frame C was pressed.
	CopyPressed bool
	// PausePressed is true on the frame Escape or P was pressed.
	PausePressed bool
}

func NewInput() *Input {
	return &Input{}
}

// Update reads this frame's input.
func (i *Input) Update() {
	i.ClickPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	if i.ClickPressed {
		x, y := ebiten.CursorPosition()
		i.ClickX, i.ClickY = float64(x), float64(y)
	}
	i.CopyPressed = inpututil.IsKeyJustPressed(ebiten.KeyC)
	i.PausePressed = inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP)
}
