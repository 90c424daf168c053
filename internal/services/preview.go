package services

import (
	"bytes"
	"context"

	"blogsync/internal/logger"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

type PreviewService interface {
	RenderHTML(ctx context.Context, markdown string) string
}

type previewService struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewPreviewService() PreviewService {
	p := bluemonday.UGCPolicy()
	p.AllowElements("img")
	p.AllowAttrs("src", "alt").OnElements("img")

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
		),
	)

	return &previewService{md: md, policy: p}
}

// RenderHTML — markdown -> HTML -> sanitize. В лог только длины.
func (s *previewService) RenderHTML(ctx context.Context, markdown string) string {
	log := logger.WithCtx(ctx)

	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		log.Warn("Ошибка рендера markdown", zap.Error(err))
		return ""
	}
	clean := s.policy.Sanitize(buf.String())
	log.Debug("Предпросмотр (render+sanitize)",
		zap.Int("md_len", len(markdown)),
		zap.Int("html_len", len(clean)),
	)
	return clean
}
