package ui

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/jyane/jgb/gb"
)

// getKeys gets the state of keyboard, WASD for directions, J and K for A
// and B, G and F for Start and Select.
func getKeys(window *glfw.Window) gb.Buttons {
	var keys gb.Buttons
	keys[gb.ButtonRight] = window.GetKey(glfw.KeyD) == glfw.Press
	keys[gb.ButtonLeft] = window.GetKey(glfw.KeyA) == glfw.Press
	keys[gb.ButtonDown] = window.GetKey(glfw.KeyS) == glfw.Press
	keys[gb.ButtonUp] = window.GetKey(glfw.KeyW) == glfw.Press
	keys[gb.ButtonStart] = window.GetKey(glfw.KeyG) == glfw.Press
	keys[gb.ButtonSelect] = window.GetKey(glfw.KeyF) == glfw.Press
	keys[gb.ButtonB] = window.GetKey(glfw.KeyK) == glfw.Press
	keys[gb.ButtonA] = window.GetKey(glfw.KeyJ) == glfw.Press
	return keys
}
