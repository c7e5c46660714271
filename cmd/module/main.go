package main

import (
	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/module"
	"go.viam.com/rdk/resource"
	generic "go.viam.com/rdk/services/generic"
	"viamconnect4"
)

func main() {
	module.ModularMain(
		resource.APIModel{API: generic.API, Model: viamconnect4.Connect4Model},
		resource.APIModel{API: camera.API, Model: viamconnect4.BoardCameraModel},
	)
}
