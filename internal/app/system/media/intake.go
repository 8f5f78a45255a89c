package media

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
)

const maxFieldBytes = 1 << 20

// Intake receives request bodies into plain fields and local temporaries.
type Intake struct {
	TempDir  string // blank means os.TempDir()
	MaxBytes int64  // total body limit; zero means unlimited
}

// Received is a decoded request body.
type Received struct {
	Fields map[string]string
	Files  []LocalFile
}

// Receive decodes multipart, JSON and urlencoded bodies. Multipart file parts
// are streamed straight to temporaries. On error no temporary survives.
func (in Intake) Receive(w http.ResponseWriter, r *http.Request) (Received, error) {
	if in.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, in.MaxBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return in.receiveMultipart(r)
	case "application/json":
		fields, err := decodeJSONFields(r.Body)
		return Received{Fields: fields}, err
	default:
		if err := r.ParseForm(); err != nil {
			return Received{}, bodyError(err)
		}
		fields := make(map[string]string, len(r.PostForm))
		for k, v := range r.PostForm {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
		return Received{Fields: fields}, nil
	}
}

func (in Intake) receiveMultipart(r *http.Request) (Received, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return Received{}, bodyError(err)
	}

	out := Received{Fields: map[string]string{}}
	fail := func(err error) (Received, error) {
		for _, f := range out.Files {
			_ = os.Remove(f.Path)
		}
		return Received{}, err
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fail(bodyError(err))
		}

		field := part.FormName()
		if field == "" {
			part.Close()
			continue
		}

		if part.FileName() == "" {
			b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			part.Close()
			if err != nil {
				return fail(bodyError(err))
			}
			if len(b) > maxFieldBytes {
				return fail(apperr.ValidationFailed(field, fmt.Sprintf("%s field is too large", field)))
			}
			if _, seen := out.Fields[field]; !seen {
				out.Fields[field] = string(b)
			}
			continue
		}

		lf, err := in.spool(part, field)
		part.Close()
		if lf.Path != "" {
			out.Files = append(out.Files, lf)
		}
		if err != nil {
			return fail(bodyError(err))
		}
	}
	return out, nil
}

// spool copies one file part into a temporary. A partially written
// temporary is still returned so the caller can remove it.
func (in Intake) spool(part *multipart.Part, field string) (LocalFile, error) {
	name := filepath.Base(part.FileName())

	tmp, err := os.CreateTemp(in.TempDir, "upload-*"+filepath.Ext(name))
	if err != nil {
		return LocalFile{}, err
	}
	lf := LocalFile{
		Field:       field,
		Path:        tmp.Name(),
		Filename:    name,
		ContentType: part.Header.Get("Content-Type"),
	}

	n, err := io.Copy(tmp, part)
	lf.Size = n
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	return lf, err
}

// decodeJSONFields flattens a JSON object into string fields. Nested arrays
// and objects are kept as their JSON text; null members are dropped.
func decodeJSONFields(body io.Reader) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, bodyError(err)
	}
	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		v = bytes.TrimSpace(v)
		if bytes.Equal(v, []byte("null")) {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			fields[k] = s
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			fields[k] = strconv.FormatFloat(f, 'f', -1, 64)
			continue
		}
		fields[k] = string(v)
	}
	return fields, nil
}

func bodyError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return apperr.ValidationFailed("body", "Request body is too large")
	}
	return apperr.ValidationFailed("body", "Request body could not be read")
}

// Discard removes the temporaries of a body whose files will not be used.
func (rc Received) Discard() {
	for _, f := range rc.Files {
		if f.Path != "" {
			_ = os.Remove(f.Path)
		}
	}
}
