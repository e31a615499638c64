package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dicematch/server/internal/api/apierr"
	"github.com/dicematch/server/internal/api/request"
	"github.com/dicematch/server/internal/api/response"
	"github.com/dicematch/server/internal/model"
	"github.com/dicematch/server/internal/storage"
)

// MaxAvatarBytes is the avatar upload size limit.
const MaxAvatarBytes = 5 << 20

// UserHandler handles profile endpoints
type UserHandler struct {
	store     storage.Storage
	uploadDir string
}

// NewUserHandler creates a new user handler
func NewUserHandler(store storage.Storage, uploadDir string) *UserHandler {
	return &UserHandler{
		store:     store,
		uploadDir: uploadDir,
	}
}

// Get handles GET /users/{email}.
//
// An email without a profile is not an error: the response carries the
// email with registered=false so the client can start registration.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	profile, err := h.store.GetProfileByEmail(r.Context(), email)
	if errors.Is(err, model.ErrProfileNotFound) {
		response.JSON(w, http.StatusOK, response.UnregisteredUser(email))
		return
	}
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromProfile(profile))
}

// Upsert handles POST /users. It creates the profile on first sight of
// the email and updates the username on subsequent calls. An omitted
// username defaults to the email's local part.
func (h *UserHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req request.UpsertUserRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Email == "" {
		WriteError(w, NewInvalidRequestError("email is required"))
		return
	}

	username := req.Username
	if username == "" {
		username, _, _ = strings.Cut(req.Email, "@")
	}

	profile, err := h.store.GetProfileByEmail(r.Context(), req.Email)
	switch {
	case errors.Is(err, model.ErrProfileNotFound):
		profile = &model.Profile{
			Email:    req.Email,
			Username: username,
		}
		if err := h.store.CreateProfile(r.Context(), profile); err != nil {
			WriteError(w, err)
			return
		}
		response.JSON(w, http.StatusCreated, response.UserFromProfile(profile))
		return
	case err != nil:
		WriteError(w, err)
		return
	}

	profile.Username = username
	if err := h.store.SaveProfile(r.Context(), profile); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromProfile(profile))
}

// UpdateStats handles PATCH /users/{email}/stats
func (h *UserHandler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	var req request.UpdateStatsRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Won == nil {
		WriteError(w, NewInvalidRequestError("won is required"))
		return
	}

	profile, err := h.store.GetProfileByEmail(r.Context(), email)
	if err != nil {
		WriteError(w, err)
		return
	}

	if *req.Won {
		profile.Wins++
	} else {
		profile.Losses++
	}
	if err := h.store.SaveProfile(r.Context(), profile); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromProfile(profile))
}

// UpdateProfile handles POST /users/profile: a multipart form with an
// email field, an optional username and an optional image file. An
// uploaded image is stored under a fresh random name and the profile's
// picture reference is updated.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarBytes)
	if err := r.ParseMultipartForm(MaxAvatarBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, apierr.NewFileTooLargeError("image exceeds the 5MB limit"))
			return
		}
		WriteError(w, NewInvalidRequestError("invalid multipart form"))
		return
	}

	email := r.FormValue("email")
	if email == "" {
		WriteError(w, NewInvalidRequestError("email is required"))
		return
	}

	var name string
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		name, err = h.saveImage(file, header)
		if err != nil {
			WriteError(w, err)
			return
		}
	case !errors.Is(err, http.ErrMissingFile):
		WriteError(w, NewInvalidRequestError("invalid image upload"))
		return
	}

	profile, err := h.store.GetProfileByEmail(r.Context(), email)
	if err != nil {
		WriteError(w, err)
		return
	}
	if username := r.FormValue("username"); username != "" {
		profile.Username = username
	}
	if name != "" {
		profile.AvatarRef = "/uploads/" + name
	}
	if err := h.store.SaveProfile(r.Context(), profile); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserFromProfile(profile))
}

// saveImage sniffs the upload, rejects non-images, and writes it to the
// upload directory under a uuid name. Returns the stored file name.
func (h *UserHandler) saveImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", NewInternalError()
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", apierr.NewInvalidFileTypeError("only image uploads are accepted")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", NewInternalError()
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", NewInternalError()
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(dst.Name())
		return "", NewInternalError()
	}
	return name, nil
}
