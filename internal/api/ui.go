package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"

	"imagegen-backend/internal/core"
	"imagegen-backend/internal/gallery"
	"imagegen-backend/pkg/api"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageTitle = "谱蓝文生图艺术工坊"

	statusRunning   = "👩🏾‍🍳 正在将你的创意变成艺术..."
	stepInitialized = "⚙️ 模型初始化成功"
	stepWaiting     = "🙆‍♀️ 请稍等片刻"
	stepComplete    = "✅ 图片生成完成!"
	toastComplete   = "图片生成完成！"
	imageCaption    = "请欣赏 AI 生成的图片 🎈"

	userGenerationError = "出错了: 图片生成失败，请稍后重试"
)

type formValues struct {
	Prompt  string
	Size    string
	Quality string
}

type resultView struct {
	Label       string
	Steps       []string
	Complete    bool
	Toast       string
	Caption     string
	Images      []string
	DownloadUrl string
	FetchErrors []string
}

type pageData struct {
	Title     string
	Sizes     []core.Size
	Qualities []core.Quality
	Form      formValues
	Result    *resultView
	Error     string
	Gallery   api.Gallery
}

// UIService renders the single-page interface. It drives the same backend
// as the JSON API.
type UIService struct {
	backend *BackendService
	gallery *gallery.Gallery
	page    *template.Template
}

func NewUIService(backend *BackendService, gallery *gallery.Gallery) (*UIService, error) {
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &UIService{backend: backend, gallery: gallery, page: page}, nil
}

func (s *UIService) AddRoutes(r chi.Router) {
	r.Get("/", s.Index)
	r.Post("/generate", s.Generate)
	r.Get("/downloads/{generation_id}", s.backend.DownloadArchive)
	r.Get("/gallery/{name}", s.GalleryImage)
}

func (s *UIService) newPage(form formValues) pageData {
	return pageData{
		Title:     pageTitle,
		Sizes:     core.Sizes,
		Qualities: core.Qualities,
		Form:      form,
		Gallery:   convertGallery(s.gallery),
	}
}

func defaultForm() formValues {
	return formValues{
		Prompt:  core.DefaultPrompt,
		Size:    string(core.DefaultSize),
		Quality: string(core.DefaultQuality),
	}
}

func (s *UIService) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		slog.Error("error rendering page", "error", err)
		http.Error(w, "error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("error writing page", "error", err)
	}
}

func (s *UIService) Index(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.newPage(defaultForm()))
}

func (s *UIService) Generate(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequestForm[api.GenerateRequest](r)
	if err != nil {
		data := s.newPage(defaultForm())
		data.Error = "出错了: " + err.Error()
		s.render(w, ErrorCode(err), data)
		return
	}

	form := formValues{Prompt: req.Prompt, Size: req.Size, Quality: req.Quality}
	data := s.newPage(form)

	submission, err := submissionFromRequest(req)
	if err != nil {
		data.Error = "出错了: " + err.Error()
		s.render(w, ErrorCode(err), data)
		return
	}
	data.Form = formValues{Prompt: submission.Prompt(), Size: string(submission.Size()), Quality: string(submission.Quality())}

	generation, result, err := s.backend.Submit(r.Context(), submission)
	if err != nil {
		data.Error = "出错了: " + err.Error()
		s.render(w, ErrorCode(err), data)
		return
	}

	view := &resultView{Label: statusRunning, Steps: []string{stepInitialized, stepWaiting}}
	data.Result = view

	if !result.Succeeded() {
		data.Error = userGenerationError
		s.render(w, http.StatusOK, data)
		return
	}

	view.Complete = true
	view.Label = stepComplete
	view.Toast = toastComplete
	view.Caption = imageCaption
	view.Images = result.ImageLocations
	view.DownloadUrl = "/downloads/" + generation.Id.String()
	for _, ferr := range result.Archive.FetchErrors {
		view.FetchErrors = append(view.FetchErrors, ferr.Error())
	}

	s.render(w, http.StatusOK, data)
}

func (s *UIService) GalleryImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	data, err := s.gallery.Read(name)
	if err != nil {
		if errors.Is(err, gallery.ErrUnknownImage) || errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "gallery image not found", http.StatusNotFound)
			return
		}
		slog.Error("error reading gallery image", "name", name, "error", err)
		http.Error(w, "error reading gallery image", http.StatusInternalServerError)
		return
	}

	contentType := "application/octet-stream"
	if filepath.Ext(name) == ".png" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("error writing gallery image", "name", name, "error", err)
	}
}
