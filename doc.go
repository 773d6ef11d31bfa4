/*
go-cvtrack orchestrates OpenCV single object trackers (KCF, MOSSE and CSRT)
over the frames of a video.  Given a video and the initial bounding boxes of
the objects to follow, it produces a per frame tracking history for every
object which can be rendered back onto the video, saved as JSON or stored in
a SQLite database.

The tracking mathematics is delegated to the single object trackers, this
package provides the MultiTracker which advances many trackers per frame,
either sequentially or fanned out across a pool of workers, and the
ObjectTracker which drives a whole video (batch mode) or accepts frames one
at a time from an external driver (streaming mode).

See example code and usage in the examples subdirectory.
*/
package cvtrack
