package controllers

import (
	"fmt"
	"net/http"
	"postit/internal/models"
	"postit/internal/providers"
	"postit/internal/services"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

const (
	maxRequestBodySize  = 1 << 20 // 1 MB
	uploadEnvelopeSlack = 1 << 20 // multipart headers and boundaries around the file
	uploadMemory        = 8 << 20
)

type SocialController struct {
	logger   providers.Logger
	service  services.SocialServiceInterface
	sessions providers.SessionProviderInterface
	uploads  providers.UploadProviderInterface
	cache    providers.CacheProviderInterface
}

func NewSocialController(logger providers.Logger, service services.SocialServiceInterface, sessions providers.SessionProviderInterface, uploads providers.UploadProviderInterface, cache providers.CacheProviderInterface) *SocialController {
	return &SocialController{
		logger:   logger,
		service:  service,
		sessions: sessions,
		uploads:  uploads,
		cache:    cache,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Desc      string `json:"desc"`
	AvatarURL string `json:"avatar_url"`
	BannerURL string `json:"banner_url"`
}

type postRequest struct {
	Text     string `json:"text"`
	MediaURL string `json:"media_url"`
}

type commentRequest struct {
	Text  string `json:"text"`
	PreID *int   `json:"pre_id"`
}

// userView is a User without its password hash.
type userView struct {
	Username  string         `json:"username"`
	Role      models.Role    `json:"role"`
	Profile   models.Profile `json:"profile"`
	CreatedAt time.Time      `json:"created_at"`
}

type sessionResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

type preCommentView struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

func newUserView(u *models.User) userView {
	return userView{
		Username:  u.Username,
		Role:      u.Role,
		Profile:   u.Profile,
		CreatedAt: u.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func statusOf(err error) int {
	kind, ok := models.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindAuth:
		return http.StatusUnauthorized
	case models.KindPermission:
		return http.StatusForbidden
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (sc *SocialController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		sc.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
		msg = "Internal Server Error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &models.Error{Kind: models.KindValidation, Msg: "malformed request body"}
	}
	return nil
}

// currentUsername reads the bearer token. No header means no session; the
// service turns the empty name into an auth error.
func (sc *SocialController) currentUsername(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", nil
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", &models.Error{Kind: models.KindAuth, Msg: "malformed authorization header"}
	}
	return sc.sessions.Parse(token)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, &models.Error{Kind: models.KindValidation, Msg: "invalid id"}
	}
	return id, nil
}

func (sc *SocialController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, key string, compute func() (any, error)) {
	if data, ok := sc.cache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		sc.writeError(w, r, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}

	sc.cache.Set(key, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// cacheKey scopes a key to the current state revision.
func (sc *SocialController) cacheKey(name string) string {
	return strconv.FormatUint(sc.service.Revision(), 10) + ":" + name
}

func (sc *SocialController) startSession(w http.ResponseWriter, r *http.Request, status int, u *models.User) {
	token, err := sc.sessions.Issue(u.Username)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	writeJSON(w, status, sessionResponse{Token: token, User: newUserView(u)})
}

func (sc *SocialController) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		sc.writeError(w, r, err)
		return
	}
	u, err := sc.service.Signup(req.Username, req.Password)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	sc.logger.Infof(providers.TypePost, "New user %s", u.Username)
	sc.startSession(w, r, http.StatusCreated, u)
}

func (sc *SocialController) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		sc.writeError(w, r, err)
		return
	}
	u, err := sc.service.Login(req.Username, req.Password)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	sc.startSession(w, r, http.StatusOK, u)
}

func (sc *SocialController) Guest(w http.ResponseWriter, r *http.Request) {
	u := sc.service.GuestLogin()
	sc.startSession(w, r, http.StatusCreated, u)
}

func (sc *SocialController) Me(w http.ResponseWriter, r *http.Request) {
	current, err := sc.currentUsername(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	if current == "" {
		sc.writeError(w, r, &models.Error{Kind: models.KindAuth, Msg: "login required"})
		return
	}
	u, err := sc.service.GetUser(current)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(u))
}

func (sc *SocialController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	current, err := sc.currentUsername(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	var req profileRequest
	if err := decodeBody(w, r, &req); err != nil {
		sc.writeError(w, r, err)
		return
	}
	u, err := sc.service.UpdateProfile(current, req.Desc, req.AvatarURL, req.BannerURL)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(u))
}

// Upload stores a multipart "file" field and returns its URL. Only
// registered users may upload.
func (sc *SocialController) Upload(w http.ResponseWriter, r *http.Request) {
	current, err := sc.currentUsername(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	if current == "" {
		sc.writeError(w, r, &models.Error{Kind: models.KindAuth, Msg: "login required"})
		return
	}
	u, err := sc.service.GetUser(current)
	if err != nil {
		sc.writeError(w, r, &models.Error{Kind: models.KindAuth, Msg: "unknown session user"})
		return
	}
	if u.IsGuest() {
		sc.writeError(w, r, &models.Error{Kind: models.KindPermission, Msg: "guests cannot upload"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, sc.uploads.MaxSize()+uploadEnvelopeSlack)
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		sc.writeError(w, r, &models.Error{Kind: models.KindValidation, Msg: "malformed upload"})
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		sc.writeError(w, r, &models.Error{Kind: models.KindValidation, Msg: "file field is required"})
		return
	}
	defer file.Close()

	url, err := sc.uploads.Save(chi.URLParam(r, "category"), header.Filename, file)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (sc *SocialController) ListPosts(w http.ResponseWriter, r *http.Request) {
	sc.serveFromCacheOrCompute(w, r, sc.cacheKey("posts"), func() (any, error) {
		return sc.service.ListPosts(), nil
	})
}

func (sc *SocialController) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	sc.serveFromCacheOrCompute(w, r, sc.cacheKey("post:"+strconv.FormatInt(id, 10)), func() (any, error) {
		p, ok := sc.service.GetPost(id)
		if !ok {
			return nil, &models.Error{Kind: models.KindNotFound, Msg: fmt.Sprintf("post %d not found", id)}
		}
		return p, nil
	})
}

func (sc *SocialController) CreatePost(w http.ResponseWriter, r *http.Request) {
	current, err := sc.currentUsername(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	var req postRequest
	if err := decodeBody(w, r, &req); err != nil {
		sc.writeError(w, r, err)
		return
	}
	p, err := sc.service.CreatePost(current, req.Text, req.MediaURL)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (sc *SocialController) DeletePost(w http.ResponseWriter, r *http.Request) {
	current, err := sc.currentUsername(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	if err := sc.service.DeletePost(current, id); err != nil {
		sc.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (sc *SocialController) LikePost(w http.ResponseWriter, r *http.Request) {
	current, err := sc.currentUsername(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	n, err := sc.service.ToggleLike(current, id)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"likes": n})
}

func (sc *SocialController) SharePost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	link, err := sc.service.ShareLink(id)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

func (sc *SocialController) CreateComment(w http.ResponseWriter, r *http.Request) {
	current, err := sc.currentUsername(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeBody(w, r, &req); err != nil {
		sc.writeError(w, r, err)
		return
	}
	preID := -1
	if req.PreID != nil {
		preID = *req.PreID
	}
	c, err := sc.service.CreateComment(current, id, req.Text, preID)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (sc *SocialController) LikeComment(w http.ResponseWriter, r *http.Request) {
	current, err := sc.currentUsername(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	id, err := idParam(r)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	n, viral, err := sc.service.ToggleCommentLike(current, id)
	if err != nil {
		sc.writeError(w, r, err)
		return
	}
	if viral {
		sc.logger.Debugf(providers.TypePost, "Comment %d is viral with %d likes", id, n)
	}
	writeJSON(w, http.StatusOK, struct {
		Likes   int  `json:"likes"`
		IsViral bool `json:"is_viral"`
	}{n, viral})
}

func (sc *SocialController) PreComments(w http.ResponseWriter, r *http.Request) {
	sc.serveFromCacheOrCompute(w, r, sc.cacheKey("pre-comments"), func() (any, error) {
		entries := sc.service.PreComments()
		out := make([]preCommentView, len(entries))
		for i, text := range entries {
			out[i] = preCommentView{ID: i, Text: text}
		}
		return out, nil
	})
}
