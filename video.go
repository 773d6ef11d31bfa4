package cvtrack

import (
	"fmt"
	"path/filepath"
	"runtime"

	"gocv.io/x/gocv"
)

// VideoSource produces decoded frames in order
type VideoSource interface {
	// Width of frames in pixels
	Width() int
	// Height of frames in pixels
	Height() int
	// FPS is the nominal frame rate
	FPS() float64
	// FrameCount is the number of frames reported by the container, zero if
	// unknown
	FrameCount() int
	// Next reads the next frame into dst, returning false at end of stream
	Next(dst *gocv.Mat) bool
	// Close releases the source
	Close() error
}

// VideoSink consumes frames in order
type VideoSink interface {
	Write(frame gocv.Mat) error
	Close() error
}

// FileSource reads frames from a video file
type FileSource struct {
	capture *gocv.VideoCapture
	width   int
	height  int
	fps     float64
	count   int
}

// OpenVideo opens a video file for reading
func OpenVideo(path string) (*FileSource, error) {

	capture, err := gocv.VideoCaptureFile(path)

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceOpen, path, err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w: %s", ErrSourceOpen, path)
	}

	count := int(capture.Get(gocv.VideoCaptureFrameCount))

	if count < 0 {
		count = 0
	}

	return &FileSource{
		capture: capture,
		width:   int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:  int(capture.Get(gocv.VideoCaptureFrameHeight)),
		fps:     capture.Get(gocv.VideoCaptureFPS),
		count:   count,
	}, nil
}

// Width of frames in pixels
func (f *FileSource) Width() int {
	return f.width
}

// Height of frames in pixels
func (f *FileSource) Height() int {
	return f.height
}

// FPS is the frame rate stored in the container
func (f *FileSource) FPS() float64 {
	return f.fps
}

// FrameCount is the frame count stored in the container, which some codecs
// only estimate
func (f *FileSource) FrameCount() int {
	return f.count
}

// Next reads the next frame, empty frames end the stream
func (f *FileSource) Next(dst *gocv.Mat) bool {
	return f.capture.Read(dst) && !dst.Empty()
}

// Close the underlying capture
func (f *FileSource) Close() error {
	return f.capture.Close()
}

// BufferSource serves frames held in memory.  The frames remain owned by
// the caller.
type BufferSource struct {
	frames []gocv.Mat
	fps    float64
	pos    int
}

// NewBufferSource creates a source over the given frames
func NewBufferSource(frames []gocv.Mat, fps float64) *BufferSource {
	return &BufferSource{frames: frames, fps: fps}
}

// Width of the first frame
func (b *BufferSource) Width() int {
	if len(b.frames) == 0 {
		return 0
	}

	return b.frames[0].Cols()
}

// Height of the first frame
func (b *BufferSource) Height() int {
	if len(b.frames) == 0 {
		return 0
	}

	return b.frames[0].Rows()
}

// FPS given at construction
func (b *BufferSource) FPS() float64 {
	return b.fps
}

// FrameCount is the number of buffered frames
func (b *BufferSource) FrameCount() int {
	return len(b.frames)
}

// Next copies the next buffered frame into dst
func (b *BufferSource) Next(dst *gocv.Mat) bool {

	if b.pos >= len(b.frames) {
		return false
	}

	b.frames[b.pos].CopyTo(dst)
	b.pos++

	return true
}

// Rewind restarts the source from the first frame
func (b *BufferSource) Rewind() {
	b.pos = 0
}

// Close is a no-op, the frames belong to the caller
func (b *BufferSource) Close() error {
	return nil
}

// FileSink writes frames to an AVI file
type FileSink struct {
	writer *gocv.VideoWriter
	path   string
}

// CreateVideo creates an AVI file called name in dir.  The codec is chosen
// for the host platform.
func CreateVideo(dir, name string, fps float64, width, height int) (*FileSink, error) {

	path := filepath.Join(dir, name)

	writer, err := gocv.VideoWriterFile(path, codec(), fps, width, height, true)

	if err != nil {
		return nil, fmt.Errorf("error creating video %s: %w", path, err)
	}

	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("error creating video %s: writer not opened", path)
	}

	return &FileSink{writer: writer, path: path}, nil
}

// Path of the video file
func (f *FileSink) Path() string {
	return f.path
}

// Write appends a frame
func (f *FileSink) Write(frame gocv.Mat) error {
	return f.writer.Write(frame)
}

// Close finalizes the video file
func (f *FileSink) Close() error {
	return f.writer.Close()
}

func codec() string {
	switch runtime.GOOS {
	case "darwin":
		return "MJPG"
	case "linux":
		return "XVID"
	}

	return "DIVX"
}
