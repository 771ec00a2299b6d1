package api

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/speakerkit/diarization"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/storage"
)

// FileField is the multipart field carrying the audio upload.
const FileField = "file"

// stage writes the request's upload to the staging directory. The caller
// must Release the returned upload.
func (h *Handler) stage(c *gin.Context) (*storage.Upload, error) {
	fh, err := c.FormFile(FileField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return nil, errors.PayloadTooLarge(maxErr.Limit)
		}
		return nil, errors.MissingField(FileField)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Internal(err)
	}
	defer f.Close()
	return h.stager.Stage(c.Request.Context(), FileField, fh.Filename, f)
}

func formInt(c *gin.Context, field string) (int, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidInput(field, "must be an integer")
	}
	return n, nil
}

func formBool(c *gin.Context, field string) (bool, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.InvalidInput(field, "must be a boolean")
	}
	return b, nil
}

// formFloat returns nil when the field is absent.
func formFloat(c *gin.Context, field string) (*float64, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.InvalidInput(field, "must be a number")
	}
	return &f, nil
}

func formHints(c *gin.Context) (diarization.Hints, error) {
	var hints diarization.Hints
	var err error
	if hints.NumSpeakers, err = formInt(c, "num_speakers"); err != nil {
		return hints, err
	}
	if hints.MinSpeakers, err = formInt(c, "min_speakers"); err != nil {
		return hints, err
	}
	if hints.MaxSpeakers, err = formInt(c, "max_speakers"); err != nil {
		return hints, err
	}
	return hints, nil
}
