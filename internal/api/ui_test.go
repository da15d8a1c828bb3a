package api_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"imagegen-backend/internal/gallery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertGalleryRendered(t *testing.T, body string) {
	t.Helper()
	for _, img := range gallery.Images {
		assert.Contains(t, body, img.Caption)
		assert.Contains(t, body, "/gallery/"+img.Name)
	}
	for _, part := range gallery.Framework {
		assert.Contains(t, body, part.Letter)
	}
}

func TestIndexPage(t *testing.T) {
	env := setup(t)

	rec := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "谱蓝文生图艺术工坊")
	assert.Contains(t, body, "stylized [dragon]")
	assert.Contains(t, body, `value="1792x1024"`)
	assert.Contains(t, body, `value="hd"`)
	assert.NotContains(t, body, "output_files.zip")
	assertGalleryRendered(t, body)
}

func TestGeneratePage(t *testing.T) {
	env := setup(t)

	rec := env.submitForm(t, url.Values{
		"prompt":  {"red circle logo"},
		"size":    {"1792x1024"},
		"quality": {"hd"},
		"submit":  {"生成图片"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "✅ 图片生成完成!")
	assert.Contains(t, body, "图片生成完成！")
	assert.Contains(t, body, `src="http://x/img.png"`)
	assert.Contains(t, body, "请欣赏 AI 生成的图片")
	assert.Contains(t, body, "/downloads/")
	assert.Contains(t, body, "output_files.zip")
	assertGalleryRendered(t, body)

	require.Len(t, env.generator.calls, 1)
	assert.Equal(t, "red circle logo", env.generator.calls[0].Prompt())
	assert.Equal(t, "1792x1024", string(env.generator.calls[0].Size()))
	assert.Equal(t, "hd", string(env.generator.calls[0].Quality()))
}

func TestGeneratePageFailure(t *testing.T) {
	env := setup(t)
	env.generator.err = fmt.Errorf("rate limited")

	rec := env.submitForm(t, url.Values{"prompt": {"red circle logo"}})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "出错了: 图片生成失败，请稍后重试")
	assert.NotContains(t, body, "rate limited")
	assert.NotContains(t, body, "/downloads/")
	assertGalleryRendered(t, body)
	assert.Empty(t, env.fetcher.locations)
}

func TestGeneratePageFetchFailure(t *testing.T) {
	env := setup(t)
	env.fetcher.status = http.StatusNotFound

	rec := env.submitForm(t, url.Values{"prompt": {"red circle logo"}})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Failed to fetch image 1 from http://x/img.png. Error code: 404")
	assert.Contains(t, body, "/downloads/")
}

func TestGeneratePageValidation(t *testing.T) {
	env := setup(t)

	rec := env.submitForm(t, url.Values{"prompt": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "出错了: ")
	assertGalleryRendered(t, rec.Body.String())

	rec = env.submitForm(t, url.Values{"prompt": {"logo"}, "size": {"512x512"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, env.generator.calls)
}

func TestGalleryImage(t *testing.T) {
	env := setup(t)

	rec := env.do(t, http.MethodGet, "/gallery/logo121.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "gallery:logo121.png", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/gallery/other.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
