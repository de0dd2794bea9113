package api

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/uploads"
)

// maxFormOverhead is the allowance for text fields on top of the file limit.
const maxFormOverhead = 1 << 20

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// decodeBody fills patch from a JSON body or, for multipart requests, from
// the form fields, and accepts the optional file in field under policy.
// The file is validated but not saved.
func decodeBody(w http.ResponseWriter, r *http.Request, patch any, field string, policy uploads.Policy) (*uploads.File, error) {
	if !isMultipart(r) {
		return nil, decodeJSON(w, r, patch)
	}

	r.Body = http.MaxBytesReader(w, r.Body, policy.MaxBytes+maxFormOverhead)
	if err := r.ParseMultipartForm(policy.MaxBytes + maxFormOverhead); err != nil {
		return nil, apperr.Invalid(field, "file too large or invalid multipart")
	}
	if err := decodeForm(r.MultipartForm.Value, patch); err != nil {
		return nil, err
	}

	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Invalid(field, "unreadable file")
	}
	defer file.Close()
	return uploads.Accept(policy, file, header)
}

// decodeForm maps form values onto the json-tagged pointer fields of the
// struct pointed to by dst. Strings are taken as-is; bools and ints are
// parsed; string slices accept a JSON array, a comma separated list or
// repeated keys.
func decodeForm(values map[string][]string, dst any) error {
	obj := make(map[string]any)
	t := reflect.TypeOf(dst).Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		vals, ok := values[name]
		if !ok || len(vals) == 0 {
			continue
		}
		kind := f.Type
		if kind.Kind() == reflect.Pointer {
			kind = kind.Elem()
		}
		switch kind.Kind() {
		case reflect.String:
			obj[name] = vals[0]
		case reflect.Bool:
			b, err := strconv.ParseBool(vals[0])
			if err != nil {
				return apperr.Invalid(name, "must be a boolean")
			}
			obj[name] = b
		case reflect.Int, reflect.Int64:
			n, err := strconv.Atoi(strings.TrimSpace(vals[0]))
			if err != nil {
				return apperr.Invalid(name, "must be an integer")
			}
			obj[name] = n
		case reflect.Slice:
			obj[name] = formList(vals)
		}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return apperr.Invalid("body", "invalid form fields")
	}
	return nil
}

func formList(vals []string) []string {
	if len(vals) == 1 {
		v := strings.TrimSpace(vals[0])
		var arr []string
		if strings.HasPrefix(v, "[") && json.Unmarshal([]byte(v), &arr) == nil {
			return arr
		}
		vals = strings.Split(v, ",")
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

