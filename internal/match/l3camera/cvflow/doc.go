// Package cvflow implements l3camera.FlowSource with OpenCV: Shi-Tomasi
// corners in the border bands and pyramidal Lucas-Kanade tracking.
//
// The implementation is only compiled with the gocv build tag
// (go build -tags=gocv); without it every entry point returns an error.
package cvflow
