package handlers

import (
	"errors"
	"html/template"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"blog/internal/accounts"
	"blog/internal/auth"
	"blog/internal/posts"
	"blog/internal/uploads"
	"blog/internal/validation"
)

// Messages shown to users. Validation failures name the field class; auth
// failures stay generic so credentials cannot be probed.
const (
	msgFieldsRequired   = "All fields are required."
	msgPasswordMismatch = "Password does not match."
	msgInvalidEmail     = "Invalid email."
	msgEmailTaken       = "Email is already taken."
	msgRegistered       = "Account created successfully. Login to continue."
	msgGenericError     = "Something went wrong."
	msgBadCredentials   = "Invalid email or password."
	msgFileTooBig       = "File size should be less than 2MB."
	msgBadFileFormat    = "Invalid file format. Only jpg, jpeg and png are allowed."
	msgBlogAdded        = "Blog added successfully."
	msgBlogDeleted      = "Blog deleted successfully."
	msgNotYourBlog      = "You are not authorized to delete this blog."
	msgBlogNotFound     = "Blog not found."
)

var allowedImageExts = []string{"jpg", "jpeg", "png"}

type Handler struct {
	accounts   *accounts.Service
	posts      *posts.Store
	sessions   *auth.Manager
	uploads    *uploads.Store
	tpls       *template.Template
	log        *logrus.Logger
	maxImageMB int64
}

func New(acc *accounts.Service, ps *posts.Store, sessions *auth.Manager, up *uploads.Store,
	tplGlob string, log *logrus.Logger, maxImageMB int64) *Handler {
	tpls := template.Must(template.ParseGlob(tplGlob))
	return &Handler{
		accounts:   acc,
		posts:      ps,
		sessions:   sessions,
		uploads:    up,
		tpls:       tpls,
		log:        log,
		maxImageMB: maxImageMB,
	}
}

// Routes builds the full router, including the static and uploaded-media
// file servers.
func (h *Handler) Routes(staticDir, uploadDir string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/login/", h.Login).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/register/", h.Register).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/logout/", h.RequireAuth(h.Logout)).Methods(http.MethodGet)
	r.HandleFunc("/blog/add/", h.AddBlog).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/blog/{id:[0-9]+}/", h.RequireAuth(h.DeleteBlog)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/profile", h.RequireAuth(h.Profile)).Methods(http.MethodGet)

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(uploadDir))))

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)
	return r
}

// render executes the named page. A pending flash cookie is popped into the
// template data unless the caller already set an inline message.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Flash"]; !ok {
		if f := popFlash(w, r); f != nil {
			data["Flash"] = f
		}
	}
	if _, ok := data["Logged"]; !ok {
		_, logged := h.sessions.CurrentUserID(r)
		data["Logged"] = logged
	}
	if err := h.tpls.ExecuteTemplate(w, name, data); err != nil {
		h.log.WithError(err).WithField("template", name).Error("render failed")
	}
}

// renderError re-renders a form with an inline error message.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, name, msg string) {
	h.render(w, r, name, map[string]any{
		"Flash": &Flash{Kind: "error", Message: msg},
	})
}

// -------- Pages

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	feed, err := h.posts.ListAll(r.Context())
	if err != nil {
		h.log.WithError(err).Error("list posts")
		h.renderError(w, r, "index", msgGenericError)
		return
	}
	h.render(w, r, "index", map[string]any{
		"Title": "Home",
		"Posts": feed,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.CurrentUserID(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		email := r.FormValue("email")
		password := r.FormValue("password")

		user, err := h.accounts.Authenticate(r.Context(), email, password)
		switch {
		case err == nil:
			if err := h.sessions.Create(w, user.ID); err != nil {
				h.log.WithError(err).Error("create session")
				h.renderError(w, r, "login", msgGenericError)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		case errors.Is(err, accounts.ErrInvalidCredentials):
			h.renderError(w, r, "login", msgBadCredentials)
			return
		default:
			h.log.WithError(err).Error("authenticate")
			h.renderError(w, r, "login", msgGenericError)
			return
		}
	}

	h.render(w, r, "login", map[string]any{"Title": "Login"})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.CurrentUserID(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		fullName := r.FormValue("full_name")
		email := r.FormValue("email")
		password := r.FormValue("password")
		confirm := r.FormValue("confirm_password")

		if validation.IsEmpty(fullName) || validation.IsEmpty(email) ||
			validation.IsEmpty(password) || validation.IsEmpty(confirm) {
			h.renderError(w, r, "register", msgFieldsRequired)
			return
		}
		if !validation.Match(password, confirm) {
			h.renderError(w, r, "register", msgPasswordMismatch)
			return
		}
		if !validation.IsValidEmail(email) {
			h.renderError(w, r, "register", msgInvalidEmail)
			return
		}

		_, err := h.accounts.CreateUser(r.Context(), email, password, fullName)
		switch {
		case err == nil:
			setFlash(w, "success", msgRegistered)
			http.Redirect(w, r, "/login/", http.StatusSeeOther)
			return
		case errors.Is(err, accounts.ErrEmailTaken):
			h.renderError(w, r, "register", msgEmailTaken)
			return
		default:
			h.log.WithError(err).Error("create user")
			h.renderError(w, r, "register", msgGenericError)
			return
		}
	}

	h.render(w, r, "register", map[string]any{"Title": "Register"})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	http.Redirect(w, r, "/login/", http.StatusSeeOther)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.sessions.CurrentUser(r)
	if !ok {
		http.Redirect(w, r, "/login/", http.StatusSeeOther)
		return
	}

	mine, err := h.posts.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.log.WithError(err).Error("list own posts")
		h.render(w, r, "profile", map[string]any{
			"Title": "Profile",
			"User":  user,
			"Flash": &Flash{Kind: "error", Message: msgGenericError},
		})
		return
	}
	h.render(w, r, "profile", map[string]any{
		"Title": "Profile",
		"User":  user,
		"Posts": mine,
	})
}

func (h *Handler) AddBlog(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		uid, ok := h.sessions.CurrentUserID(r)
		if !ok {
			http.Redirect(w, r, "/login/", http.StatusSeeOther)
			return
		}

		// 8MB parse cap; the 2MB business limit is checked below so the
		// user gets the proper message rather than a parse failure.
		if err := r.ParseMultipartForm(8 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			h.renderError(w, r, "add_blog", msgFieldsRequired)
			return
		}

		title := r.FormValue("title")
		content := r.FormValue("content")
		var image *multipart.FileHeader
		if r.MultipartForm != nil && len(r.MultipartForm.File["image"]) > 0 {
			image = r.MultipartForm.File["image"][0]
		}

		if validation.IsEmpty(title) || validation.IsEmpty(content) || !validation.FileExists(image) {
			h.renderError(w, r, "add_blog", msgFieldsRequired)
			return
		}
		if !validation.ValidFileSize(image, h.maxImageMB) {
			h.renderError(w, r, "add_blog", msgFileTooBig)
			return
		}
		if !validation.ValidFileExtension(image, allowedImageExts) {
			h.renderError(w, r, "add_blog", msgBadFileFormat)
			return
		}

		stored, err := h.uploads.Save(image)
		if err != nil {
			h.log.WithError(err).Error("save image")
			h.renderError(w, r, "add_blog", msgGenericError)
			return
		}
		if _, err := h.posts.Create(r.Context(), uid, title, content, stored); err != nil {
			h.log.WithError(err).Error("create post")
			h.renderError(w, r, "add_blog", msgGenericError)
			return
		}

		// Success re-renders the form rather than redirecting, matching the
		// original behavior of this flow.
		h.render(w, r, "add_blog", map[string]any{
			"Title": "Add Blog",
			"Flash": &Flash{Kind: "success", Message: msgBlogAdded},
		})
		return
	}

	h.render(w, r, "add_blog", map[string]any{"Title": "Add Blog"})
}

func (h *Handler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.sessions.CurrentUserID(r)
	if !ok {
		http.Redirect(w, r, "/login/", http.StatusSeeOther)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	switch err := h.posts.DeleteByID(r.Context(), id, uid); {
	case err == nil:
		setFlash(w, "success", msgBlogDeleted)
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
	case errors.Is(err, posts.ErrNotOwner):
		setFlash(w, "error", msgNotYourBlog)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, posts.ErrNotFound):
		setFlash(w, "error", msgBlogNotFound)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		h.log.WithError(err).Error("delete post")
		setFlash(w, "error", msgGenericError)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	// Pop the flash before the status line goes out; cookies cannot be set
	// after WriteHeader.
	data := map[string]any{"Title": "Not Found"}
	if f := popFlash(w, r); f != nil {
		data["Flash"] = f
	}
	w.WriteHeader(http.StatusNotFound)
	h.render(w, r, "notfound", data)
}
