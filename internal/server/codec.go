package server

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"

	goahttp "goa.design/goa/v3/http"

	"portfolio/internal/domain"
	"portfolio/internal/services"
	apperrors "portfolio/pkg/errors"
)

// maxBodyBytes caps request bodies at 100 KiB.
const maxBodyBytes = 100 << 10

const msgBodyTooLarge = "Request body too large"

type messageBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type listBody struct {
	Success bool             `json:"success"`
	Data    []domain.Contact `json:"data"`
}

// decodeSubmission reads a JSON or url-encoded form body. An empty body
// decodes to an empty submission so that validation reports the missing
// fields.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (*domain.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var sub domain.Submission
	if isForm(r) {
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		sub.Name = r.PostForm.Get("name")
		sub.Email = r.PostForm.Get("email")
		sub.Subject = r.PostForm.Get("subject")
		sub.Message = r.PostForm.Get("message")
		return &sub, nil
	}

	if err := goahttp.RequestDecoder(r).Decode(&sub); err != nil {
		if errors.Is(err, io.EOF) {
			return &sub, nil
		}
		return nil, bodyError(err)
	}
	return &sub, nil
}

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.Wrap(apperrors.ErrCodePayloadTooLarge, msgBodyTooLarge, err)
	}
	return apperrors.Wrap(apperrors.ErrCodeValidation, services.MsgInvalidBody, err)
}

// encode writes v as JSON with the given status. The content type is pinned
// to JSON regardless of the Accept header.
func (s *Server) encode(w http.ResponseWriter, r *http.Request, status int, v any) {
	ctx := context.WithValue(r.Context(), goahttp.ContentTypeKey, "application/json")
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(status)
	if err := enc.Encode(v); err != nil {
		s.log.Warn().Err(err).Str("path", r.URL.Path).Msg("encode response")
	}
}

// writeError translates err into a status and the {success:false} envelope.
// Only AppError.Message reaches the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	message := services.MsgInternal
	if appErr, ok := apperrors.As(err); ok && appErr.Message != "" {
		message = appErr.Message
	}

	ev := s.log.Debug()
	if status >= http.StatusInternalServerError {
		ev = s.log.Error()
	}
	ev.Err(err).
		Str("request_id", requestID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")

	s.encode(w, r, status, messageBody{Success: false, Message: message})
}

func statusOf(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperrors.ErrCodePersistenceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
