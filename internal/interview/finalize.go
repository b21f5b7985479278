package interview

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UploadDestination is the server-issued presigned target for one artifact.
type UploadDestination struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// UploadAPI is the server surface the finalization pipeline consumes.
type UploadAPI interface {
	PresignUpload(ctx context.Context, fileName, contentType string) (UploadDestination, error)
	TransferBlob(ctx context.Context, dest UploadDestination, blob []byte, contentType string) error
	AssociateMedia(ctx context.Context, videoRef, audioRef string) (interviewID int64, err error)
}

// Finalizer runs once, on entering finished: stop the recorders, release the
// devices, assemble the blobs, upload each non-empty artifact, associate the
// media references with the interview record, then flush any turns buffered
// while the interview ID was unknown. Every step is independently fallible
// and logged; nothing is surfaced to the candidate.
type Finalizer struct {
	capture    *Capture
	api        UploadAPI
	transcript *Transcript
	log        *logrus.Entry
}

func NewFinalizer(capture *Capture, api UploadAPI, transcript *Transcript, log *logrus.Logger) *Finalizer {
	return &Finalizer{
		capture:    capture,
		api:        api,
		transcript: transcript,
		log:        log.WithField("component", "finalize"),
	}
}

func (f *Finalizer) Run(ctx context.Context) {
	combined, audioOnly := f.capture.StopAll(ctx)

	// The blobs are assembled; nothing past this point needs the devices,
	// so the camera light goes off here, not at unmount.
	f.capture.Close()

	if len(combined) == 0 && len(audioOnly) == 0 {
		f.log.Info("no recorded media, skipping upload")
		return
	}

	var videoRef, audioRef string
	if len(combined) > 0 {
		videoRef = f.upload(ctx, combined, "video/webm", ".webm")
	}
	if len(audioOnly) > 0 {
		audioRef = f.upload(ctx, audioOnly, "audio/webm", ".webm")
	}

	// One failed artifact must not block the other, nor the association,
	// as long as something made it up.
	if videoRef == "" && audioRef == "" {
		f.log.Error("all media uploads failed")
		return
	}

	interviewID, err := f.api.AssociateMedia(ctx, videoRef, audioRef)
	if err != nil {
		f.log.WithError(err).Error("media association failed")
		return
	}
	f.log.WithField("interview_id", interviewID).Info("media associated")

	f.transcript.SetInterviewID(interviewID)
}

// upload presigns and transfers one blob. Returns the stored reference, or
// empty string on failure.
func (f *Finalizer) upload(ctx context.Context, blob []byte, contentType, ext string) string {
	fileName := uuid.NewString() + ext

	dest, err := f.api.PresignUpload(ctx, fileName, contentType)
	if err != nil {
		f.log.WithError(err).WithField("file", fileName).Warn("presign failed")
		return ""
	}
	if err := f.api.TransferBlob(ctx, dest, blob, contentType); err != nil {
		f.log.WithError(err).WithField("file", fileName).Warn("blob transfer failed")
		return ""
	}

	f.log.WithFields(logrus.Fields{"file": fileName, "bytes": len(blob)}).Info("artifact uploaded")
	if dest.Key != "" {
		return dest.Key
	}
	return dest.URL
}
