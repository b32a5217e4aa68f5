package rettiwt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// UploadPhase is one step of the chunked media upload.
type UploadPhase int

const (
	PhaseInitialize UploadPhase = iota + 1
	PhaseAppend
	PhaseFinalize
)

func (p UploadPhase) String() string {
	switch p {
	case PhaseInitialize:
		return "INIT"
	case PhaseAppend:
		return "APPEND"
	case PhaseFinalize:
		return "FINALIZE"
	}
	return "UNKNOWN"
}

// Upload sends media in three phases and returns the media id to attach to a post.
// The phases run strictly in order and stop at the first failure; the media id is
// returned only after FINALIZE succeeded.
func (c *Client) Upload(ctx context.Context, media []byte) (string, error) {
	if len(media) == 0 {
		return "", invalidArgument(MediaUploadInitialize, "media is empty")
	}

	id, err := query(ctx, c, MediaUploadInitialize, Params{ParamSize: len(media)}, extractID)
	if err != nil {
		return "", phaseFailed(MediaUploadInitialize, PhaseInitialize, err)
	}
	if id == "" {
		return "", phaseFailed(MediaUploadInitialize, PhaseInitialize, ErrUploadInitFailed)
	}
	c.log.Debug("upload initialized", slog.String("media_id", id), slog.Int("size", len(media)))

	if _, err := query(ctx, c, MediaUploadAppend, Params{ParamMediaID: id, ParamMedia: media}, extractNone); err != nil {
		return "", phaseFailed(MediaUploadAppend, PhaseAppend, err)
	}
	if _, err := query(ctx, c, MediaUploadFinalize, Params{ParamMediaID: id}, extractNone); err != nil {
		return "", phaseFailed(MediaUploadFinalize, PhaseFinalize, err)
	}
	return id, nil
}

// UploadFile reads path and uploads its contents.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	media, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read media: %w", err)
	}
	return c.Upload(ctx, media)
}

// phaseFailed wraps err as an upload failure. Invalid arguments and missing
// credentials keep their own kind.
func phaseFailed(r Resource, phase UploadPhase, err error) error {
	if errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrAuthenticationRequired) {
		return err
	}
	e := &Error{Kind: ErrUploadPhaseFailed, Resource: r, Phase: phase, Err: err}
	var pe *Error
	if errors.As(err, &pe) {
		e.Status, e.Code = pe.Status, pe.Code
	}
	return e
}
